package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/metrics"
	"rescueDispatch/internal/notify"
	"rescueDispatch/pkg/e"
)

type NotificationSource interface {
	Pop(ctx context.Context, timeout time.Duration) (domain.Notification, error)
}

// NotificationRelay drains the outbox and fans every event out to the sinks.
// A sink that still fails after maxRetries attempts loses that event.
type NotificationRelay struct {
	logger     *slog.Logger
	source     NotificationSource
	sinks      []notify.Sink
	metrics    *metrics.Metrics
	maxRetries int
	popTimeout time.Duration
	backoff    func(attempt int) time.Duration
}

func NewNotificationRelay(logger *slog.Logger, source NotificationSource, sinks []notify.Sink, m *metrics.Metrics, maxRetries int) *NotificationRelay {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &NotificationRelay{
		logger:     logger,
		source:     source,
		sinks:      sinks,
		metrics:    m,
		maxRetries: maxRetries,
		popTimeout: 5 * time.Second,
		backoff:    func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
}

func (r *NotificationRelay) Run(ctx context.Context) {
	r.logger.Info("notification relay STARTED", slog.Int("sinks", len(r.sinks)))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("notification relay STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		default:
		}

		n, err := r.source.Pop(ctx, r.popTimeout)
		if err != nil {
			if errors.Is(err, e.ErrQueueEmpty) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			r.logger.Error("outbox pop failed", slog.Any("error", err))
			sleepCtx(ctx, 500*time.Millisecond)
			continue
		}

		r.Deliver(ctx, n)
	}
}

// Deliver sends n to every sink that accepts it.
func (r *NotificationRelay) Deliver(ctx context.Context, n domain.Notification) {
	for _, sink := range r.sinks {
		if !sink.Accepts(n) {
			continue
		}
		r.sendWithRetry(ctx, sink, n)
	}
}

func (r *NotificationRelay) sendWithRetry(ctx context.Context, sink notify.Sink, n domain.Notification) {
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		if ctx.Err() != nil {
			r.logger.Info("stop retries due to context cancel", slog.String("sink", sink.Name()))
			return
		}

		err := sink.Send(ctx, n)
		if err == nil {
			r.metrics.NotificationDelivered(sink.Name())
			return
		}

		r.logger.Warn("notification delivery failed",
			slog.String("sink", sink.Name()),
			slog.String("type", string(n.Type)),
			slog.String("notification_id", n.ID.String()),
			slog.Int("attempt", attempt),
			slog.String("reason", err.Error()),
		)
		if attempt < r.maxRetries {
			sleepCtx(ctx, r.backoff(attempt))
		}
	}

	r.metrics.NotificationFailed(sink.Name())
	r.logger.Error("notification dropped",
		slog.String("sink", sink.Name()),
		slog.String("notification_id", n.ID.String()),
	)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
