package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-warehouse.git/internal/kafka"
	"github.com/ariefcatur/go-warehouse.git/internal/redisx"
	"github.com/ariefcatur/go-warehouse.git/internal/warehouse"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Service mendengarkan event lifecycle order dan mengirim notifikasi ke
// customer (di sini: structured log; integrasi email/SMS tinggal ganti sink).
// Stok TIDAK disentuh di sini; reservasi & kompensasi sudah selesai di API
// sebelum event terbit.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// Handle dipasang sebagai handler consumer untuk kedua topic order.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env warehouse.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	// dedup via Redis (pakai event_id); event ulang di-skip
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	fresh, err := redisx.SetOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err == nil && !fresh {
		return nil
	}

	switch env.EventType {
	case warehouse.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[warehouse.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"order_id":    p.OrderID,
			"customer":    p.CustomerName,
			"total_price": p.TotalPrice,
			"items":       len(p.Items),
		}).Info("order confirmed")

	case warehouse.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[warehouse.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		entry := log.WithFields(log.Fields{
			"order_id":   p.OrderID,
			"old_status": p.OldStatus,
			"new_status": p.NewStatus,
		})
		if p.NewStatus == warehouse.StatusCancelled {
			entry.WithField("restocked_items", len(p.Restocked)).Info("order cancelled, stock restored")
		} else {
			entry.Info("order status changed")
		}

	case warehouse.EventOrderDeleted:
		p, err := kafkax.UnwrapPayload[warehouse.OrderDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		log.WithField("order_id", p.OrderID).Info("order deleted")

	default:
		// event tak dikenal: commit saja, jangan blokir partisi
	}
	return nil
}
