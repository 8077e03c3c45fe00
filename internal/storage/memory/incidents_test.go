package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/pkg/e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 12, 23, 12, 0, 0, 0, time.UTC)

func pendingIncident(requestID string, at time.Time, p geo.Point) *domain.Incident {
	inc := &domain.Incident{
		ID:        uuid.New(),
		RequestID: requestID,
		Location:  domain.Location{Address: "Galle Road", Coordinates: p},
		Reporter:  domain.Reporter{Name: "Nimal", Phone: "+94770000000"},
		Status:    domain.StatusPendingAssignment,
		Priority:  domain.PriorityNormal,
		CreatedAt: at,
	}
	inc.Append(domain.TimelineEntry{Timestamp: at, Status: inc.Status, Action: domain.ActionCreated})
	return inc
}

func TestIncidentStore_CreateGet(t *testing.T) {
	s := NewIncidentStore()
	ctx := context.Background()

	inc := pendingIncident("RSC-20251223-AAAAAA", base, geo.Point{Lat: 6.9, Lng: 79.85})
	require.NoError(t, s.Create(ctx, inc))
	assert.Equal(t, int64(1), inc.Version)

	got, err := s.Get(ctx, inc.ID)
	require.NoError(t, err)
	assert.Equal(t, inc.RequestID, got.RequestID)

	// returned copies are detached from the stored record
	got.Timeline[0].Notes = "tampered"
	again, err := s.Get(ctx, inc.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Timeline[0].Notes)

	byRef, err := s.GetByRequestID(ctx, "RSC-20251223-AAAAAA")
	require.NoError(t, err)
	assert.Equal(t, inc.ID, byRef.ID)

	dup := pendingIncident("RSC-20251223-AAAAAA", base, geo.Point{Lat: 6.9, Lng: 79.85})
	assert.ErrorIs(t, s.Create(ctx, dup), e.ErrUniqueViolation)

	_, err = s.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestIncidentStore_CreateRejectsInvariantViolation(t *testing.T) {
	s := NewIncidentStore()
	inc := pendingIncident("RSC-1", base, geo.Point{Lat: 1, Lng: 1})
	inc.Status = domain.StatusDriverAssigned

	err := s.Create(context.Background(), inc)
	assert.ErrorIs(t, err, e.ErrInternal)
	assert.Equal(t, 0, s.Len())
}

func TestIncidentStore_UpdateFailureLeavesRecord(t *testing.T) {
	s := NewIncidentStore()
	ctx := context.Background()
	inc := pendingIncident("RSC-1", base, geo.Point{Lat: 1, Lng: 1})
	require.NoError(t, s.Create(ctx, inc))

	boom := errors.New("boom")
	_, err := s.Update(ctx, inc.ID, func(in *domain.Incident) error {
		in.Notes = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// assignment without the matching status violates the invariants
	_, err = s.Update(ctx, inc.ID, func(in *domain.Incident) error {
		in.Assignment = &domain.Assignment{DriverID: "drv-1"}
		return nil
	})
	assert.ErrorIs(t, err, e.ErrInternal)

	got, err := s.Get(ctx, inc.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Notes)
	assert.Nil(t, got.Assignment)
	assert.Equal(t, int64(1), got.Version)
}

func TestIncidentStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	s := NewIncidentStore()
	ctx := context.Background()
	inc := pendingIncident("RSC-1", base, geo.Point{Lat: 1, Lng: 1})
	require.NoError(t, s.Create(ctx, inc))

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, inc.ID, func(in *domain.Incident) error {
				in.Append(domain.TimelineEntry{Timestamp: time.Now().UTC(), Status: in.Status, Action: domain.ActionNote})
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, inc.ID)
	require.NoError(t, err)
	assert.Len(t, got.Timeline, writers+1)
	assert.Equal(t, int64(writers+1), got.Version)
	require.NoError(t, got.CheckInvariants())
}

func TestIncidentStore_ListFiltersAndPages(t *testing.T) {
	s := NewIncidentStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		inc := pendingIncident("RSC-"+string(rune('A'+i)), base.Add(time.Duration(i)*time.Minute), geo.Point{Lat: 1, Lng: 1})
		if i%2 == 0 {
			inc.Priority = domain.PriorityHigh
			inc.IsEmergency = true
		}
		require.NoError(t, s.Create(ctx, inc))
	}

	items, total, err := s.List(ctx, domain.IncidentFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, items, 2)
	assert.Equal(t, "RSC-E", items[0].RequestID)
	assert.Equal(t, "RSC-D", items[1].RequestID)

	emergency := true
	items, total, err = s.List(ctx, domain.IncidentFilter{Emergency: &emergency})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 3)

	items, total, err = s.List(ctx, domain.IncidentFilter{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestIncidentStore_GeoAndDriverQueries(t *testing.T) {
	s := NewIncidentStore()
	ctx := context.Background()

	near := pendingIncident("RSC-NEAR", base, geo.Point{Lat: 6.9271, Lng: 79.8612})
	far := pendingIncident("RSC-FAR", base.Add(time.Minute), geo.Point{Lat: 7.2906, Lng: 80.6337})
	require.NoError(t, s.Create(ctx, near))
	require.NoError(t, s.Create(ctx, far))

	_, err := s.Update(ctx, near.ID, func(in *domain.Incident) error {
		in.Assignment = &domain.Assignment{DriverID: "drv-1", DriverName: "Kamal", AssignedAt: base}
		in.Status = domain.StatusDriverAssigned
		in.Append(domain.TimelineEntry{Timestamp: base, Status: in.Status, Action: domain.ActionAssigned, DriverID: "drv-1"})
		return nil
	})
	require.NoError(t, err)

	open, err := s.ListOpenWithin(ctx, geo.Point{Lat: 6.93, Lng: 79.86}, geo.KM(10))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, near.ID, open[0].ID)

	pending, err := s.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, far.ID, pending[0].ID)

	busy, err := s.BusyDrivers(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]uuid.UUID{"drv-1": near.ID}, busy)

	mine, err := s.ListByDriver(ctx, "drv-1", time.Time{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, near.ID, mine[0].ID)
}
