package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/redis/go-redis/v9"
)

// NotificationQueue is the outbox list: producers LPUSH, the relay BRPOPs.
type NotificationQueue struct {
	client *redis.Client
	key    string
}

func NewNotificationQueue(client *redis.Client, key string) *NotificationQueue {
	return &NotificationQueue{client: client, key: key}
}

func (q *NotificationQueue) Enqueue(ctx context.Context, n domain.Notification) error {
	const op = "redis.NotificationQueue.Enqueue"

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := q.client.LPush(ctx, q.key, b).Err(); err != nil {
		return e.WrapError(ctx, op, err)
	}
	return nil
}

// Pop blocks up to timeout and returns e.ErrQueueEmpty when nothing arrived.
func (q *NotificationQueue) Pop(ctx context.Context, timeout time.Duration) (domain.Notification, error) {
	const op = "redis.NotificationQueue.Pop"

	var n domain.Notification

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return n, e.ErrQueueEmpty
		}
		return n, e.WrapError(ctx, op, err)
	}
	if len(res) < 2 {
		return n, e.ErrQueueEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return n, fmt.Errorf("%s: decode: %w", op, err)
	}
	return n, nil
}

func (q *NotificationQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}
