package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Burst error dari handler tidak boleh bikin worker macet; semua message
// tetap diproses, dan hanya yang sukses yang di-commit.
func TestRunWorkerDrainsAfterHandlerErrors(t *testing.T) {
	jobs := make(chan kafka.Message, 16)
	for i := 0; i < 12; i++ {
		jobs <- kafka.Message{Offset: int64(i)}
	}
	close(jobs)

	var handled, committed []int64
	h := func(ctx context.Context, m kafka.Message) error {
		handled = append(handled, m.Offset)
		if m.Offset%2 == 1 {
			return errors.New("boom")
		}
		return nil
	}
	commit := func(ctx context.Context, msgs ...kafka.Message) error {
		committed = append(committed, msgs[0].Offset)
		return nil
	}

	done := make(chan struct{})
	go func() {
		runWorker(context.Background(), jobs, h, commit)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker macet setelah burst error")
	}

	require.Len(t, handled, 12)
	assert.Equal(t, []int64{0, 2, 4, 6, 8, 10}, committed)
}

func TestRunWorkerCommitErrorDoesNotStop(t *testing.T) {
	jobs := make(chan kafka.Message, 4)
	for i := 0; i < 3; i++ {
		jobs <- kafka.Message{Offset: int64(i)}
	}
	close(jobs)

	var handled int
	h := func(ctx context.Context, m kafka.Message) error {
		handled++
		return nil
	}
	commit := func(ctx context.Context, msgs ...kafka.Message) error {
		return errors.New("broker down")
	}

	done := make(chan struct{})
	go func() {
		runWorker(context.Background(), jobs, h, commit)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker macet saat commit gagal")
	}
	assert.Equal(t, 3, handled)
}
