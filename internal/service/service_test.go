package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/internal/service"
	"rescueDispatch/internal/storage/memory"
	"rescueDispatch/internal/triage"

	"github.com/google/uuid"
)

var (
	fallbackCenter = geo.Point{Lat: 6.9271, Lng: 79.8612}

	admin    = domain.Actor{ID: "adm-1", Name: "Admin", Role: domain.RoleAdmin}
	operator = domain.Actor{ID: "op-1", Name: "Operator", Role: domain.RoleOperator}
	reporter = domain.Actor{ID: "acc-9", Name: "Reporter", Role: domain.RoleReporter}
)

func driverActor(id string) domain.Actor {
	return domain.Actor{ID: id, Name: id, Role: domain.RoleDriver}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f64ptr(v float64) *float64 { return &v }

type recordingEmitter struct {
	mu     sync.Mutex
	events []domain.Notification
}

func (r *recordingEmitter) Emit(_ context.Context, n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, n)
}

func (r *recordingEmitter) types() []domain.NotificationType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.NotificationType, 0, len(r.events))
	for _, n := range r.events {
		out = append(out, n.Type)
	}
	return out
}

type fixture struct {
	store      *memory.IncidentStore
	drivers    *memory.DriverDirectory
	facilities *memory.FacilityDirectory
	locator    *geo.MemoryIndex
	emitter    *recordingEmitter
	svc        *service.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	drivers := []domain.Driver{
		{ID: "drv-near", Name: "Kamal", Coordinates: geo.Point{Lat: 6.9300, Lng: 79.8600}, Available: true},
		{ID: "drv-mid", Name: "Sunil", Coordinates: geo.Point{Lat: 6.9700, Lng: 79.8900}, Available: true},
		{ID: "drv-off", Name: "Ruwan", Coordinates: geo.Point{Lat: 6.9280, Lng: 79.8610}, Available: false},
	}
	facilities := []domain.Facility{
		{ID: "vet-near", Name: "Kynsey Vet", Address: "Kynsey Road", Contact: "011-1", Coordinates: geo.Point{Lat: 6.9150, Lng: 79.8650}, AcceptsEmergencies: true, Capacity: 3},
		{ID: "vet-clinic", Name: "Wellawatte Clinic", Address: "Galle Road", Contact: "011-2", Coordinates: geo.Point{Lat: 6.8750, Lng: 79.8600}, AcceptsEmergencies: false, Capacity: 2},
		{ID: "vet-full", Name: "Nugegoda Vet", Address: "High Level Road", Contact: "011-3", Coordinates: geo.Point{Lat: 6.8700, Lng: 79.8900}, AcceptsEmergencies: true, Capacity: 0},
		{ID: "vet-kandy", Name: "Peradeniya", Address: "Peradeniya", Contact: "081-1", Coordinates: geo.Point{Lat: 7.2700, Lng: 80.5970}, AcceptsEmergencies: true, Capacity: 10},
	}

	f := &fixture{
		store:      memory.NewIncidentStore(),
		drivers:    memory.NewDriverDirectory(drivers),
		facilities: memory.NewFacilityDirectory(facilities),
		locator:    geo.NewMemoryIndex(),
		emitter:    &recordingEmitter{},
	}
	for _, d := range drivers {
		_ = f.locator.Upsert(context.Background(), d.ID, d.Coordinates)
	}

	logger := newTestLogger()
	lifecycle := service.NewLifecycle(f.store, triage.New(), f.emitter, nil, logger, fallbackCenter)
	dispatch := service.NewDispatcher(lifecycle, f.store, f.drivers, f.locator, f.facilities, nil, logger, service.DispatchConfig{})
	f.svc = service.NewService(lifecycle, dispatch, service.NewStatsService(f.store, logger))
	return f
}

func galleRoadReport() domain.CreateIncidentRequest {
	return domain.CreateIncidentRequest{
		Address:       "Galle Road, Colombo 03",
		Condition:     "critical",
		Breed:         "Mixed",
		Injuries:      []string{"leg"},
		ReporterName:  "Nimal Perera",
		ReporterPhone: "+94771234567",
	}
}

func (f *fixture) create(t *testing.T, req domain.CreateIncidentRequest) *domain.Incident {
	t.Helper()
	inc, err := f.svc.Lifecycle.Create(context.Background(), reporter, req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return inc
}

func (f *fixture) createAt(t *testing.T, p geo.Point, condition string) *domain.Incident {
	t.Helper()
	req := galleRoadReport()
	req.Condition = condition
	req.Coordinates = &domain.CoordinatesInput{Lat: f64ptr(p.Lat), Lng: f64ptr(p.Lng)}
	return f.create(t, req)
}

func (f *fixture) assign(t *testing.T, id uuid.UUID, driverID string) *domain.Incident {
	t.Helper()
	inc, err := f.svc.Dispatch.AssignDriver(context.Background(), operator, id, domain.AssignDriverRequest{DriverID: driverID})
	if err != nil {
		t.Fatalf("AssignDriver(%s): %v", driverID, err)
	}
	return inc
}

func mustInvariants(t *testing.T, inc *domain.Incident) {
	t.Helper()
	if err := inc.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}
