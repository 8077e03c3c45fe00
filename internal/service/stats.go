package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"
)

type StatsService struct {
	repo   IncidentRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewStatsService(repo IncidentRepository, logger *slog.Logger) *StatsService {
	return &StatsService{repo: repo, logger: logger, now: time.Now}
}

// DriverStatistics aggregates the driver's timeline activity inside the period.
// Staff may read any driver; a driver only itself.
func (s *StatsService) DriverStatistics(ctx context.Context, actor domain.Actor, req domain.StatsRequest) (domain.DriverStats, error) {
	const op = "service.StatsService.DriverStatistics"

	if req.DriverID == "" {
		return domain.DriverStats{}, e.Invalid(op, "driver id required")
	}
	if !actor.IsStaff() && !actor.IsDriver(req.DriverID) {
		return domain.DriverStats{}, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	period, err := domain.ParsePeriod(string(req.Period))
	if err != nil {
		return domain.DriverStats{}, e.Invalid(op, err.Error())
	}

	since := period.Since(s.now().UTC())
	incidents, err := s.repo.ListByDriver(ctx, req.DriverID, since)
	if err != nil {
		s.logger.Error("list incidents by driver failed", slog.String("op", op), slog.Any("error", err))
		return domain.DriverStats{}, err
	}

	out := domain.DriverStats{DriverID: req.DriverID, Period: period}
	if !since.IsZero() {
		out.Since = &since
	}
	for _, inc := range incidents {
		aggregateDriver(&out, inc, req.DriverID, since)
	}
	return out, nil
}

func aggregateDriver(out *domain.DriverStats, inc *domain.Incident, driverID string, since time.Time) {
	for _, en := range inc.Timeline {
		if en.DriverID != driverID || en.Timestamp.Before(since) {
			continue
		}
		switch en.Action {
		case domain.ActionAssigned:
			out.Assigned++
		case domain.ActionAccepted:
			out.Accepted++
		case domain.ActionDeclined:
			out.Declined++
		}
	}

	if c := inc.Completion; c != nil && c.DriverID == driverID && !c.CompletedAt.Before(since) {
		out.Completed++
		switch inc.Status {
		case domain.StatusRescued:
			out.Rescued++
		case domain.StatusTreatmentComplete:
			out.TreatmentComplete++
		case domain.StatusCancelled:
			out.Cancelled++
		}
	}
	if inc.AssignedTo(driverID) {
		out.Active++
	}
}
