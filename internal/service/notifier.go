package service

import (
	"context"
	"log/slog"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/metrics"

	"github.com/google/uuid"
)

//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mock_service

// NotificationQueue is the outbox the relay worker drains.
type NotificationQueue interface {
	Enqueue(ctx context.Context, n domain.Notification) error
}

// Notifier is the Emitter backed by the outbox. Emit never fails the caller.
type Notifier struct {
	queue   NotificationQueue
	metrics *metrics.Metrics
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewNotifier(q NotificationQueue, m *metrics.Metrics, logger *slog.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Notifier{
		queue:   q,
		metrics: m,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

func (n *Notifier) Emit(ctx context.Context, note domain.Notification) {
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = n.now().UTC()
	}

	// the primary mutation has already committed; a client disconnect must not drop the event
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.queue.Enqueue(ctx, note); err != nil {
		n.metrics.NotificationFailed("outbox")
		n.logger.Error("notification enqueue failed",
			slog.String("type", string(note.Type)),
			slog.String("incident_id", note.RelatedIncidentID.String()),
			slog.Any("error", err),
		)
		return
	}
	n.metrics.NotificationEnqueued()
	n.logger.Debug("notification enqueued",
		slog.String("id", note.ID.String()),
		slog.String("type", string(note.Type)),
	)
}
