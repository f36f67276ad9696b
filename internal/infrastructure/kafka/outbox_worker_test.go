package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	mu        sync.Mutex
	pending   []*usecase.OutboxEvent
	processed []int64
	released  []int64
}

func (f *fakeOutbox) Create(_ context.Context, ev *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = append(f.pending, ev)
	return ev, nil
}

func (f *fakeOutbox) GetAndMarkAsProcessing(_ context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := min(limit, len(f.pending))
	batch := f.pending[:n]
	f.pending = f.pending[n:]
	return batch, nil
}

func (f *fakeOutbox) MarkAsProcessed(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutbox) ReleaseToPending(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, id)
	return nil
}

type fakeProducer struct {
	keys   []string
	failOn string
}

func (f *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	if req.Key == f.failOn {
		return errors.New("dial tcp: connection refused")
	}
	f.keys = append(f.keys, req.Key)
	return nil
}

func seed(repo *fakeOutbox, n int) {
	for i := 1; i <= n; i++ {
		ev := usecase.NewOutboxEvent(fmt.Sprintf("ev-%d", i), usecase.EventOrderCreated, fmt.Sprintf("order-%d", i), []byte("x"))
		ev.ID = int64(i)
		repo.pending = append(repo.pending, ev)
	}
}

func TestOutboxWorker_DrainDeliversAll(t *testing.T) {
	repo := &fakeOutbox{}
	seed(repo, 25)
	producer := &fakeProducer{}

	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "")
	w.drain(context.Background())

	assert.Len(t, producer.keys, 25)
	assert.Equal(t, "order-1", producer.keys[0])
	assert.Len(t, repo.processed, 25)
	assert.Empty(t, repo.pending)
}

func TestOutboxWorker_FailedEventIsReleased(t *testing.T) {
	repo := &fakeOutbox{}
	seed(repo, 3)
	producer := &fakeProducer{failOn: "order-2"}

	w := NewOutboxWorker(repo, logger.NewNopLogger(), producer, "")
	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)

	assert.False(t, hasMore)
	assert.Equal(t, []string{"order-1", "order-3"}, producer.keys)
	assert.Equal(t, []int64{1, 3}, repo.processed)
	assert.Equal(t, []int64{2}, repo.released)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("read: connection reset by peer")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}
