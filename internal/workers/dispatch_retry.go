package workers

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/google/uuid"
)

type PendingLister interface {
	ListPending(ctx context.Context, limit int) ([]*domain.Incident, error)
}

type AutoAssigner interface {
	AutoAssign(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error)
}

// DispatchRetry periodically offers still-pending incidents to nearby drivers
// again. A ticker producer feeds a fixed pool of workers.
type DispatchRetry struct {
	logger     *slog.Logger
	incidents  PendingLister
	dispatcher AutoAssigner
	interval   time.Duration
	batch      int
	poolSize   int
	jobs       chan uuid.UUID
}

func NewDispatchRetry(logger *slog.Logger, incidents PendingLister, dispatcher AutoAssigner, interval time.Duration, batch, poolSize int) *DispatchRetry {
	if batch <= 0 {
		batch = 50
	}
	if poolSize <= 0 {
		poolSize = 1
	}
	return &DispatchRetry{
		logger:     logger,
		incidents:  incidents,
		dispatcher: dispatcher,
		interval:   interval,
		batch:      batch,
		poolSize:   poolSize,
		jobs:       make(chan uuid.UUID, batch),
	}
}

func (w *DispatchRetry) Run(ctx context.Context) {
	w.logger.Info("dispatch retry STARTED", slog.Duration("interval", w.interval), slog.Int("workers", w.poolSize))

	var wg sync.WaitGroup

	for i := 0; i < w.poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.worker(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.producer(ctx)
	}()
	wg.Wait()

	w.logger.Info("dispatch retry STOPPED")
}

func (w *DispatchRetry) producer(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep queues one batch of the oldest pending incidents.
func (w *DispatchRetry) Sweep(ctx context.Context) int {
	pending, err := w.incidents.ListPending(ctx, w.batch)
	if err != nil {
		w.logger.Error("list pending incidents failed", slog.Any("error", err))
		return 0
	}

	queued := 0
	for _, inc := range pending {
		select {
		case w.jobs <- inc.ID:
			queued++
		case <-ctx.Done():
			return queued
		default:
			// workers are still busy with the previous sweep
			return queued
		}
	}
	return queued
}

func (w *DispatchRetry) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-w.jobs:
			w.process(ctx, id)
		}
	}
}

func (w *DispatchRetry) process(ctx context.Context, id uuid.UUID) {
	inc, err := w.dispatcher.AutoAssign(ctx, domain.System, id)
	switch {
	case err == nil:
		if inc.Assignment != nil {
			w.logger.Info("pending incident dispatched",
				slog.String("id", id.String()),
				slog.String("driver_id", inc.Assignment.DriverID),
			)
		}
	case errors.Is(err, e.ErrConflict), errors.Is(err, e.ErrNotFound):
		// assigned or removed since the sweep
	default:
		w.logger.Warn("auto dispatch failed", slog.String("id", id.String()), slog.Any("error", err))
	}
}
