package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
)

// Handler harus return nil hanya jika proses sukses & boleh commit offset.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers}
}

func (c *Consumer) Start(ctx context.Context, h Handler) error {
	jobs := make(chan kafka.Message, 1024)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runWorker(ctx, jobs, h, c.r.CommitMessages)
		}()
	}

	// dispatcher loop
	var readErr error
loop:
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			// kecilkan noise saat shutdown
			if ctx.Err() == nil {
				readErr = err
			}
			break
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			break loop
		}
	}
	close(jobs)
	wg.Wait()
	if err := c.r.Close(); err != nil && readErr == nil {
		readErr = err
	}
	return readErr
}

// runWorker memproses jobs sampai channel ditutup. Error handler hanya
// di-log + backoff ringan; offset message gagal tidak pernah di-commit, jadi
// akan di-redeliver. Worker tidak pernah block pada error.
func runWorker(ctx context.Context, jobs <-chan kafka.Message, h Handler,
	commit func(ctx context.Context, msgs ...kafka.Message) error) {
	for m := range jobs {
		if err := h(ctx, m); err != nil {
			log.WithError(err).Warn("consumer worker")
			time.Sleep(200 * time.Millisecond) // backoff ringan
			continue
		}
		if err := commit(ctx, m); err != nil {
			log.WithError(err).Warn("commit offset")
		}
	}
}
