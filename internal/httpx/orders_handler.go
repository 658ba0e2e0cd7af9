package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-warehouse.git/internal/kafka"
	"github.com/ariefcatur/go-warehouse.git/internal/redisx"
	"github.com/ariefcatur/go-warehouse.git/internal/warehouse"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type OrdersHandler struct {
	Repo            *warehouse.OrderRepo
	ProducerCreated *kafkax.Producer // topic warehouse.order.created
	ProducerStatus  *kafkax.Producer // topic warehouse.order.status
	Redis           *redis.Client
	Service         string
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.create)
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Patch("/orders/{id}/status", h.updateStatus)
	r.Delete("/orders/{id}", h.delete)
}

func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var in warehouse.OrderInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Reservasi stok + penulisan order terjadi atomik di repo; di sini
	// tinggal cache & publish setelah commit.
	o, err := h.Repo.Create(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheOrder(ctx, o)
	h.publish(h.ProducerCreated, warehouse.EventOrderCreated, o.ID, r.Header.Get("X-Request-Id"),
		warehouse.OrderCreatedPayload{
			OrderID:      o.ID,
			CustomerName: o.CustomerName,
			Items:        o.Items,
			TotalPrice:   o.TotalPrice,
		})

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Repo.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	key := fmt.Sprintf(redisx.KeyOrder, id)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	// 2) fallback DB
	o, err := h.Repo.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cacheOrder(ctx, o)
	writeJSON(w, http.StatusOK, o)
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	var req UpdateStatusReq
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	change, err := h.Repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	h.cacheOrder(ctx, change.Order)
	h.publish(h.ProducerStatus, warehouse.EventOrderStatusChanged, id, r.Header.Get("X-Request-Id"),
		warehouse.OrderStatusChangedPayload{
			OrderID:   id,
			OldStatus: change.OldStatus,
			NewStatus: change.Order.Status,
			Restocked: change.Restocked,
		})

	writeJSON(w, http.StatusOK, change.Order)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Delete TIDAK mengembalikan stok; hanya cancel yang kompensasi.
	o, err := h.Repo.Delete(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrder, id)).Err()
	h.publish(h.ProducerStatus, warehouse.EventOrderDeleted, id, r.Header.Get("X-Request-Id"),
		warehouse.OrderDeletedPayload{OrderID: id})

	writeJSON(w, http.StatusOK, o)
}

// cacheOrder: simpan JSON order supaya GET berikutnya cepat. Best-effort,
// DB tetap jadi kebenaran.
func (h *OrdersHandler) cacheOrder(ctx context.Context, o warehouse.Order) {
	b, err := json.Marshal(o)
	if err != nil {
		return
	}
	_ = h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrder, o.ID), b, redisx.TTLOrderCache).Err()
}

func (h *OrdersHandler) publish(p *kafkax.Producer, eventType string, orderID int64, trace string, payload any) {
	ev := warehouse.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       trace,
		CorrelationID: strconv.FormatInt(orderID, 10),
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(warehouse.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
