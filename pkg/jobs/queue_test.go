package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu    sync.Mutex
	ids   []string
	delay time.Duration
}

func (h *recordingHandler) handle(_ context.Context, job Job) error {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, job.ID)
	return nil
}

func (h *recordingHandler) seen() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.ids...)
}

func TestQueueStopDrainsBufferedJobs(t *testing.T) {
	handler := &recordingHandler{delay: 5 * time.Millisecond}
	q := NewQueue("test", handler.handle, QueueConfig{Workers: 1, BufferSize: 10})
	q.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(Job{ID: fmt.Sprintf("job-%d", i)}))
	}
	q.Stop()

	assert.Len(t, handler.seen(), 5)
}

func TestQueueRejectsJobsBeforeStartAndAfterStop(t *testing.T) {
	handler := &recordingHandler{}
	q := NewQueue("test", handler.handle, QueueConfig{Workers: 1})

	require.Error(t, q.Enqueue(Job{ID: "early"}))

	q.Start(context.Background())
	q.Stop()
	require.Error(t, q.Enqueue(Job{ID: "late"}))
	assert.Empty(t, handler.seen())
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	handler := func(_ context.Context, _ Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return fmt.Errorf("transient")
		}
		return nil
	}

	q := NewQueue("test", handler, QueueConfig{
		Workers:     1,
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
	})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "flaky", Type: "archive"}))
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestQueueDropsJobAfterExhaustingAttempts(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	handler := func(_ context.Context, _ Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return fmt.Errorf("permanent")
	}

	q := NewQueue("test", handler, QueueConfig{
		Workers:     1,
		MaxAttempts: 2,
		RetryDelay:  time.Millisecond,
	})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "doomed"}))
	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}
