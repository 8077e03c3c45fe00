package service

import (
	"context"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=mock_service

// IncidentRepository is the Incident Store. Update is the only write path for
// existing incidents: fn runs under the store's per-incident single-writer
// guard against the current record, and nothing is persisted when fn fails.
type IncidentRepository interface {
	Create(ctx context.Context, incident *domain.Incident) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error)
	GetByRequestID(ctx context.Context, requestID string) (*domain.Incident, error)
	List(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, int64, error)
	ListOpenWithin(ctx context.Context, origin geo.Point, radiusMeters float64) ([]*domain.Incident, error)
	ListPending(ctx context.Context, limit int) ([]*domain.Incident, error)
	ListByDriver(ctx context.Context, driverID string, since time.Time) ([]*domain.Incident, error)
	BusyDrivers(ctx context.Context) (map[string]uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, fn func(incident *domain.Incident) error) (*domain.Incident, error)
}

type FacilityDirectory interface {
	Get(ctx context.Context, id string) (*domain.Facility, error)
	List(ctx context.Context) ([]domain.Facility, error)
}

type DriverDirectory interface {
	Get(ctx context.Context, id string) (*domain.Driver, error)
	ListAvailable(ctx context.Context) ([]domain.Driver, error)
}

type DriverLocator interface {
	geo.Index
	Upsert(ctx context.Context, driverID string, p geo.Point) error
}

type Classifier interface {
	Classify(descriptor string) (domain.Priority, bool, error)
}

type Emitter interface {
	Emit(ctx context.Context, n domain.Notification)
}

type Service struct {
	Lifecycle *Lifecycle
	Dispatch  *Dispatcher
	Stats     *StatsService
}

func NewService(lifecycle *Lifecycle, dispatch *Dispatcher, stats *StatsService) *Service {
	return &Service{
		Lifecycle: lifecycle,
		Dispatch:  dispatch,
		Stats:     stats,
	}
}
