package memory

import (
	"context"
	"fmt"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"
)

// NotificationQueue is the in-process outbox. Enqueue fails instead of blocking
// when the buffer is full.
type NotificationQueue struct {
	ch chan domain.Notification
}

func NewNotificationQueue(size int) *NotificationQueue {
	if size <= 0 {
		size = 1024
	}
	return &NotificationQueue{ch: make(chan domain.Notification, size)}
}

func (q *NotificationQueue) Enqueue(ctx context.Context, n domain.Notification) error {
	select {
	case q.ch <- n:
		return nil
	case <-ctx.Done():
		return e.WrapError(ctx, "memory.NotificationQueue.Enqueue", ctx.Err())
	default:
		return fmt.Errorf("memory.NotificationQueue.Enqueue: queue full: %w", e.ErrInternal)
	}
}

// Pop waits up to timeout; e.ErrQueueEmpty when nothing arrived.
func (q *NotificationQueue) Pop(ctx context.Context, timeout time.Duration) (domain.Notification, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case n := <-q.ch:
		return n, nil
	case <-t.C:
		return domain.Notification{}, e.ErrQueueEmpty
	case <-ctx.Done():
		return domain.Notification{}, e.WrapError(ctx, "memory.NotificationQueue.Pop", ctx.Err())
	}
}

func (q *NotificationQueue) Len() int { return len(q.ch) }
