// Package memory holds the in-process stores used when no database is configured
// and by the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/pkg/e"

	"github.com/google/uuid"
)

type IncidentStore struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*domain.Incident
	byRequest map[string]uuid.UUID
}

func NewIncidentStore() *IncidentStore {
	return &IncidentStore{
		byID:      make(map[uuid.UUID]*domain.Incident),
		byRequest: make(map[string]uuid.UUID),
	}
}

func (s *IncidentStore) Create(ctx context.Context, incident *domain.Incident) error {
	const op = "memory.Incident.Create"

	if err := ctx.Err(); err != nil {
		return e.WrapError(ctx, op, err)
	}
	if incident == nil || incident.ID == uuid.Nil {
		return fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}
	if incident.Version == 0 {
		incident.Version = 1
	}
	if incident.UpdatedAt.IsZero() {
		incident.UpdatedAt = incident.CreatedAt
	}
	if err := incident.CheckInvariants(); err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, e.ErrInternal)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[incident.ID]; ok {
		return fmt.Errorf("%s: %w", op, e.ErrUniqueViolation)
	}
	if _, ok := s.byRequest[incident.RequestID]; ok {
		return fmt.Errorf("%s: %w", op, e.ErrUniqueViolation)
	}
	s.byID[incident.ID] = incident.Clone()
	s.byRequest[incident.RequestID] = incident.ID
	return nil
}

func (s *IncidentStore) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	const op = "memory.Incident.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	inc, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return inc.Clone(), nil
}

func (s *IncidentStore) GetByRequestID(ctx context.Context, requestID string) (*domain.Incident, error) {
	const op = "memory.Incident.GetByRequestID"

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRequest[requestID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return s.byID[id].Clone(), nil
}

// List returns newest first.
func (s *IncidentStore) List(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, int64, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	matched := make([]*domain.Incident, 0, len(s.byID))
	for _, inc := range s.byID {
		if filter.Matches(inc) {
			matched = append(matched, inc)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].RequestID > matched[j].RequestID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.Limit
	if start >= len(matched) {
		return []*domain.Incident{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*domain.Incident, 0, end-start)
	for _, inc := range matched[start:end] {
		out = append(out, inc.Clone())
	}
	return out, total, nil
}

func (s *IncidentStore) ListOpenWithin(ctx context.Context, origin geo.Point, radiusMeters float64) ([]*domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Incident, 0)
	for _, inc := range s.byID {
		if inc.Status.Terminal() {
			continue
		}
		if geo.Haversine(origin, inc.Location.Coordinates) <= radiusMeters {
			out = append(out, inc.Clone())
		}
	}
	return out, nil
}

// ListPending returns the oldest pending incidents first.
func (s *IncidentStore) ListPending(ctx context.Context, limit int) ([]*domain.Incident, error) {
	s.mu.RLock()
	pending := make([]*domain.Incident, 0)
	for _, inc := range s.byID {
		if inc.Status == domain.StatusPendingAssignment {
			pending = append(pending, inc)
		}
	}
	s.mu.RUnlock()

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	out := make([]*domain.Incident, 0, len(pending))
	for _, inc := range pending {
		out = append(out, inc.Clone())
	}
	return out, nil
}

// ListByDriver returns incidents the driver appears in, updated at or after since.
func (s *IncidentStore) ListByDriver(ctx context.Context, driverID string, since time.Time) ([]*domain.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Incident, 0)
	for _, inc := range s.byID {
		if inc.UpdatedAt.Before(since) || !mentionsDriver(inc, driverID) {
			continue
		}
		out = append(out, inc.Clone())
	}
	return out, nil
}

func mentionsDriver(inc *domain.Incident, driverID string) bool {
	if inc.AssignedTo(driverID) {
		return true
	}
	for _, en := range inc.Timeline {
		if en.DriverID == driverID {
			return true
		}
	}
	return false
}

// BusyDrivers maps every driver holding an active assignment to that incident.
func (s *IncidentStore) BusyDrivers(ctx context.Context) (map[string]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]uuid.UUID)
	for _, inc := range s.byID {
		if inc.Assignment != nil {
			out[inc.Assignment.DriverID] = inc.ID
		}
	}
	return out, nil
}

// Update runs fn on a copy under the write lock and swaps it in only when fn
// succeeds and the result still satisfies the incident invariants.
func (s *IncidentStore) Update(ctx context.Context, id uuid.UUID, fn func(incident *domain.Incident) error) (*domain.Incident, error) {
	const op = "memory.Incident.Update"

	if err := ctx.Err(); err != nil {
		return nil, e.WrapError(ctx, op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := next.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, e.ErrInternal)
	}
	next.ID = current.ID
	next.RequestID = current.RequestID
	next.Version = current.Version + 1

	s.byID[id] = next
	return next.Clone(), nil
}

func (s *IncidentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
