//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/pkg/e"
)

var (
	testPool *pgxpool.Pool
	tc       testcontainers.Container
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	user := "postgres"
	pass := "postgres"
	db := "postgres"

	req := testcontainers.ContainerRequest{
		Image:        "postgis/postgis:16-3.4-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(90 * time.Second),
	}

	var err error
	tc, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Println("cannot start container:", err)
		os.Exit(1)
	}

	host, _ := tc.Host(ctx)
	mappedPort, _ := tc.MappedPort(ctx, "5432/tcp")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, mappedPort.Port(), db)

	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Println("pgxpool.New:", err)
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := testPool.Ping(ctx); err != nil {
		fmt.Println("pool.Ping:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	if err := Migrate(ctx, testPool); err != nil {
		fmt.Println("Migrate:", err)
		testPool.Close()
		_ = tc.Terminate(ctx)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	_ = tc.Terminate(ctx)
	os.Exit(code)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func truncate(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), `TRUNCATE TABLE incidents, drivers, facilities`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func newIncident(requestID string, at time.Time, p geo.Point) *domain.Incident {
	return &domain.Incident{
		ID:                  uuid.New(),
		RequestID:           requestID,
		Location:            domain.Location{Address: "Galle Road", Coordinates: p},
		Animal:              domain.Animal{Condition: "limping", Injuries: []string{"leg"}},
		Reporter:            domain.Reporter{Name: "Nimal", Phone: "+94771234567"},
		ConditionDescriptor: "injured",
		Status:              domain.StatusPendingAssignment,
		Priority:            domain.PriorityHigh,
		Timeline: []domain.TimelineEntry{{
			Timestamp: at,
			Status:    domain.StatusPendingAssignment,
			Action:    domain.ActionCreated,
		}},
		Photos:    []string{},
		CreatedAt: at,
	}
}

func assignTo(driverID string, now time.Time) func(*domain.Incident) error {
	return func(inc *domain.Incident) error {
		if inc.Status != domain.StatusPendingAssignment {
			return e.ErrInvalidTransition
		}
		inc.Status = domain.StatusDriverAssigned
		inc.Assignment = &domain.Assignment{DriverID: driverID, DriverName: driverID, AssignedAt: now}
		inc.Append(domain.TimelineEntry{
			Timestamp: now,
			Status:    domain.StatusDriverAssigned,
			Action:    domain.ActionAssigned,
			DriverID:  driverID,
		})
		return nil
	}
}

var colombo = geo.Point{Lat: 6.9271, Lng: 79.8612}

func TestIncidentStore_CreateAndGet(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	store := NewIncidentStore(testPool, newTestLogger())

	inc := newIncident("RSC-20251223-AAAAAA", time.Now().UTC().Truncate(time.Millisecond), colombo)
	if err := store.Create(ctx, inc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RequestID != inc.RequestID || got.Version != 1 || len(got.Timeline) != 1 {
		t.Fatalf("got = %+v", got)
	}
	if got.Animal.Injuries[0] != "leg" || got.Location.Coordinates != colombo {
		t.Fatalf("doc not round-tripped: %+v", got)
	}

	byReq, err := store.GetByRequestID(ctx, inc.RequestID)
	if err != nil || byReq.ID != inc.ID {
		t.Fatalf("GetByRequestID = %+v, %v", byReq, err)
	}

	dup := newIncident(inc.RequestID, time.Now().UTC(), colombo)
	if err := store.Create(ctx, dup); !errors.Is(err, e.ErrUniqueViolation) {
		t.Fatalf("duplicate request id err = %v", err)
	}

	if _, err := store.Get(ctx, uuid.New()); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestIncidentStore_UpdateVersionsAndRollsBack(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	store := NewIncidentStore(testPool, newTestLogger())

	now := time.Now().UTC()
	inc := newIncident("RSC-20251223-BBBBBB", now, colombo)
	if err := store.Create(ctx, inc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.Update(ctx, inc.ID, assignTo("drv-1", now.Add(time.Minute)))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != 2 || updated.Assignment.DriverID != "drv-1" {
		t.Fatalf("updated = %+v", updated)
	}

	boom := errors.New("boom")
	_, err = store.Update(ctx, inc.ID, func(i *domain.Incident) error {
		i.Notes = "should not persist"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	got, _ := store.Get(ctx, inc.ID)
	if got.Notes != "" || got.Version != 2 {
		t.Fatalf("failed update leaked: %+v", got)
	}

	busy, err := store.BusyDrivers(ctx)
	if err != nil || busy["drv-1"] != inc.ID {
		t.Fatalf("BusyDrivers = %v, %v", busy, err)
	}
}

func TestIncidentStore_ConcurrentAssignOneWins(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	store := NewIncidentStore(testPool, newTestLogger())

	now := time.Now().UTC()
	inc := newIncident("RSC-20251223-CCCCCC", now, colombo)
	if err := store.Create(ctx, inc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for k := 0; k < n; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			_, err := store.Update(ctx, inc.ID, assignTo(fmt.Sprintf("drv-%d", k), now.Add(time.Second)))
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(k)
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("winners = %d, want 1", winners)
	}
	got, _ := store.Get(ctx, inc.ID)
	if got.Version != 2 || len(got.Timeline) != 2 {
		t.Fatalf("got version=%d timeline=%d", got.Version, len(got.Timeline))
	}
}

func TestIncidentStore_Queries(t *testing.T) {
	truncate(t)
	ctx := context.Background()
	store := NewIncidentStore(testPool, newTestLogger())

	base := time.Now().UTC().Add(-time.Hour)
	near := newIncident("RSC-20251223-DDDDD1", base, geo.Point{Lat: 6.93, Lng: 79.86})
	far := newIncident("RSC-20251223-DDDDD2", base.Add(time.Minute), geo.Point{Lat: 7.2906, Lng: 80.6337})
	emergency := newIncident("RSC-20251223-DDDDD3", base.Add(2*time.Minute), geo.Point{Lat: 6.95, Lng: 79.87})
	emergency.Priority = domain.PriorityEmergency
	emergency.IsEmergency = true
	for _, inc := range []*domain.Incident{near, far, emergency} {
		if err := store.Create(ctx, inc); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if _, err := store.Update(ctx, near.ID, assignTo("drv-9", base.Add(3*time.Minute))); err != nil {
		t.Fatalf("Update: %v", err)
	}

	open, err := store.ListOpenWithin(ctx, colombo, geo.KM(20))
	if err != nil || len(open) != 2 {
		t.Fatalf("ListOpenWithin = %d, %v", len(open), err)
	}

	pending, err := store.ListPending(ctx, 10)
	if err != nil || len(pending) != 2 || pending[0].ID != far.ID {
		t.Fatalf("ListPending = %+v, %v", pending, err)
	}

	yes := true
	list, total, err := store.List(ctx, domain.IncidentFilter{Emergency: &yes})
	if err != nil || total != 1 || list[0].ID != emergency.ID {
		t.Fatalf("List(emergency) = %d/%d, %v", len(list), total, err)
	}

	list, total, err = store.List(ctx, domain.IncidentFilter{Page: 1, Limit: 2})
	if err != nil || total != 3 || len(list) != 2 || list[0].ID != emergency.ID {
		t.Fatalf("List(page) = %d/%d, %v", len(list), total, err)
	}

	mine, err := store.ListByDriver(ctx, "drv-9", base)
	if err != nil || len(mine) != 1 || mine[0].ID != near.ID {
		t.Fatalf("ListByDriver = %+v, %v", mine, err)
	}
	none, err := store.ListByDriver(ctx, "drv-9", time.Now().UTC().Add(time.Hour))
	if err != nil || len(none) != 0 {
		t.Fatalf("ListByDriver(since future) = %d, %v", len(none), err)
	}
}

func TestDirectories(t *testing.T) {
	truncate(t)
	ctx := context.Background()

	_, err := testPool.Exec(ctx, `
		INSERT INTO drivers (id, name, phone, geo_point, available) VALUES
			('drv-1', 'Kamal', '+94770000001', ST_SetSRID(ST_MakePoint(79.86, 6.93), 4326)::geography, true),
			('drv-2', 'Sunil', '+94770000002', ST_SetSRID(ST_MakePoint(79.89, 6.97), 4326)::geography, false);
		INSERT INTO facilities (id, name, address, contact, geo_point, accepts_emergencies, capacity) VALUES
			('vet-1', 'Colombo Animal Hospital', '12 Kynsey Road', '+94112000000',
			 ST_SetSRID(ST_MakePoint(79.87, 6.91), 4326)::geography, true, 4);
	`)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	drivers := NewDriverDirectory(testPool, newTestLogger())
	avail, err := drivers.ListAvailable(ctx)
	if err != nil || len(avail) != 1 || avail[0].ID != "drv-1" {
		t.Fatalf("ListAvailable = %+v, %v", avail, err)
	}
	if avail[0].Coordinates.Lat < 6.929 || avail[0].Coordinates.Lat > 6.931 {
		t.Fatalf("coordinates = %+v", avail[0].Coordinates)
	}
	all, err := drivers.List(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("List = %d, %v", len(all), err)
	}
	if _, err := drivers.Get(ctx, "nobody"); !errors.Is(err, e.ErrNotFound) {
		t.Fatalf("Get(nobody) err = %v", err)
	}

	facilities := NewFacilityDirectory(testPool, newTestLogger())
	f, err := facilities.Get(ctx, "vet-1")
	if err != nil || !f.AcceptsEmergencies || f.Capacity != 4 {
		t.Fatalf("Get = %+v, %v", f, err)
	}
	list, err := facilities.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %d, %v", len(list), err)
	}
}
