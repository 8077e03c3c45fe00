package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/internal/metrics"
	"rescueDispatch/pkg/e"
	"rescueDispatch/pkg/validator"

	"github.com/google/uuid"
)

type DispatchConfig struct {
	DriverRadiusKM   float64
	FacilityRadiusKM float64
	IncidentRadiusKM float64
	CandidateLimit   int
	ListLimit        int
}

func (c DispatchConfig) withDefaults() DispatchConfig {
	if c.DriverRadiusKM <= 0 {
		c.DriverRadiusKM = 20
	}
	if c.FacilityRadiusKM <= 0 {
		c.FacilityRadiusKM = 50
	}
	if c.IncidentRadiusKM <= 0 {
		c.IncidentRadiusKM = 50
	}
	if c.CandidateLimit <= 0 {
		c.CandidateLimit = 5
	}
	if c.ListLimit <= 0 {
		c.ListLimit = 20
	}
	return c
}

// driverTargets are the statuses an assigned driver may report through UpdateProgress.
var driverTargets = map[domain.IncidentStatus]bool{
	domain.StatusDriverEnRoute:     true,
	domain.StatusDogPickedUp:       true,
	domain.StatusEnRouteToHospital: true,
	domain.StatusAtHospital:        true,
	domain.StatusTreatmentComplete: true,
	domain.StatusRescued:           true,
}

// Dispatcher matches incidents with drivers and facilities and runs the
// assignment/response flow on top of the Lifecycle.
type Dispatcher struct {
	lifecycle  *Lifecycle
	repo       IncidentRepository
	drivers    DriverDirectory
	locator    DriverLocator
	facilities FacilityDirectory
	metrics    *metrics.Metrics
	logger     *slog.Logger
	cfg        DispatchConfig

	claimMu sync.Mutex
	claimed map[string]struct{}
}

var errDriverBusy = errors.New("driver already holds an active incident")

func NewDispatcher(
	lifecycle *Lifecycle,
	repo IncidentRepository,
	drivers DriverDirectory,
	locator DriverLocator,
	facilities FacilityDirectory,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg DispatchConfig,
) *Dispatcher {
	return &Dispatcher{
		lifecycle:  lifecycle,
		repo:       repo,
		drivers:    drivers,
		locator:    locator,
		facilities: facilities,
		metrics:    m,
		logger:     logger,
		cfg:        cfg.withDefaults(),
		claimed:    make(map[string]struct{}),
	}
}

func (d *Dispatcher) AssignDriver(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.AssignDriverRequest) (*domain.Incident, error) {
	const op = "service.Dispatcher.AssignDriver"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	if !actor.IsStaff() && !actor.IsDriver(req.DriverID) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}

	driver, err := d.drivers.Get(ctx, req.DriverID)
	if err != nil {
		return nil, fmt.Errorf("%s: driver %s: %w", op, req.DriverID, err)
	}
	name := req.DriverName
	if name == "" {
		name = driver.Name
	}

	inc, err := d.lifecycle.mutate(ctx, op, id, func(inc *domain.Incident, now time.Time) error {
		if inc.Assignment != nil || inc.Status != domain.StatusPendingAssignment {
			return fmt.Errorf("incident is %s: %w", inc.Status, e.ErrConflict)
		}
		inc.Assignment = &domain.Assignment{
			DriverID:   driver.ID,
			DriverName: name,
			AssignedAt: now,
		}
		return applyTransition(inc, domain.StatusDriverAssigned, domain.TimelineEntry{
			Action:   domain.ActionAssigned,
			Notes:    "Assigned to " + name,
			ActorID:  actor.ID,
			DriverID: driver.ID,
		}, now)
	})
	if err != nil {
		if errors.Is(err, e.ErrConflict) {
			d.metrics.AssignConflict()
			d.logger.Warn("assignment conflict",
				slog.String("id", id.String()),
				slog.String("driver_id", req.DriverID),
			)
		}
		return nil, err
	}

	d.lifecycle.emit(ctx, inc, domain.NotificationDriverAssigned,
		fmt.Sprintf("Rescue request %s assigned to %s", inc.RequestID, name), driver.ID, nil)
	return inc, nil
}

// AutoAssign offers the incident to the nearest eligible drivers in order until
// one assignment succeeds. No candidates is not an error.
func (d *Dispatcher) AutoAssign(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
	const op = "service.Dispatcher.AutoAssign"

	if !actor.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}

	candidates, err := d.CandidateDrivers(ctx, actor, id, 0, 0)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		d.metrics.AutoDispatch("no_candidates")
		d.logger.Info("no candidate drivers", slog.String("id", id.String()))
		return d.repo.Get(ctx, id)
	}

	for _, c := range candidates {
		inc, err := d.assignIfFree(ctx, actor, id, c.Driver)
		switch {
		case err == nil:
			d.metrics.AutoDispatch("assigned")
			return inc, nil
		case errors.Is(err, e.ErrConflict):
			d.metrics.AutoDispatch("conflict")
			return nil, err
		case errors.Is(err, errDriverBusy), errors.Is(err, e.ErrNotFound):
			// taken by a concurrent dispatch or gone from the directory since the search
			continue
		default:
			return nil, err
		}
	}

	d.metrics.AutoDispatch("no_candidates")
	return d.repo.Get(ctx, id)
}

// assignIfFree holds the driver's claim while it re-checks busyness and commits,
// so concurrent auto-dispatches for different incidents never share a driver.
func (d *Dispatcher) assignIfFree(ctx context.Context, actor domain.Actor, id uuid.UUID, drv domain.Driver) (*domain.Incident, error) {
	if !d.claim(drv.ID) {
		return nil, errDriverBusy
	}
	defer d.release(drv.ID)

	busy, err := d.repo.BusyDrivers(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := busy[drv.ID]; ok {
		return nil, errDriverBusy
	}
	return d.AssignDriver(ctx, actor, id, domain.AssignDriverRequest{
		DriverID:   drv.ID,
		DriverName: drv.Name,
	})
}

func (d *Dispatcher) claim(driverID string) bool {
	d.claimMu.Lock()
	defer d.claimMu.Unlock()
	if _, ok := d.claimed[driverID]; ok {
		return false
	}
	d.claimed[driverID] = struct{}{}
	return true
}

func (d *Dispatcher) release(driverID string) {
	d.claimMu.Lock()
	delete(d.claimed, driverID)
	d.claimMu.Unlock()
}

// CandidateDrivers lists available drivers nearest to the incident. Drivers who
// already declined it are skipped until staff reopen the incident.
func (d *Dispatcher) CandidateDrivers(ctx context.Context, actor domain.Actor, id uuid.UUID, radiusKM float64, limit int) ([]domain.CandidateDriver, error) {
	const op = "service.Dispatcher.CandidateDrivers"

	if !actor.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if radiusKM <= 0 {
		radiusKM = d.cfg.DriverRadiusKM
	}
	if limit <= 0 {
		limit = d.cfg.CandidateLimit
	}

	inc, err := d.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	available, err := d.drivers.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	busy, err := d.repo.BusyDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	declined := inc.DeclinedBy()
	eligible := make(map[string]domain.Driver, len(available))
	for _, drv := range available {
		if !drv.Available || drv.ActiveIncidentID != "" || declined[drv.ID] {
			continue
		}
		if _, ok := busy[drv.ID]; ok {
			continue
		}
		eligible[drv.ID] = drv
	}

	found, err := d.locator.NearestWithinRadius(ctx, inc.Location.Coordinates, geo.KM(radiusKM), func(id string) bool {
		_, ok := eligible[id]
		return ok
	}, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]domain.CandidateDriver, 0, len(found))
	for _, c := range found {
		drv := eligible[c.ID]
		drv.Coordinates = c.Point
		out = append(out, domain.CandidateDriver{Driver: drv, DistanceMeters: c.DistanceMeters})
	}
	return out, nil
}

func (d *Dispatcher) RespondToAssignment(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.RespondRequest) (*domain.Incident, error) {
	const op = "service.Dispatcher.RespondToAssignment"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}

	var driverID string
	inc, err := d.lifecycle.mutate(ctx, op, id, func(inc *domain.Incident, now time.Time) error {
		if inc.Assignment == nil || !actor.IsDriver(inc.Assignment.DriverID) {
			return e.ErrForbidden
		}
		if inc.Status != domain.StatusDriverAssigned {
			return fmt.Errorf("incident is %s: %w", inc.Status, e.ErrInvalidTransition)
		}
		driverID = inc.Assignment.DriverID

		if req.Response == domain.ResponseDecline {
			notes := "Declined by driver"
			if req.Reason != "" {
				notes += ": " + req.Reason
			}
			return applyTransition(inc, domain.StatusPendingAssignment, domain.TimelineEntry{
				Action:   domain.ActionDeclined,
				Notes:    notes,
				ActorID:  actor.ID,
				DriverID: driverID,
			}, now)
		}

		if inc.Assignment.AcceptedAt != nil {
			return fmt.Errorf("assignment already accepted: %w", e.ErrInvalidTransition)
		}
		accepted := now
		inc.Assignment.AcceptedAt = &accepted
		notes := "Accepted by driver"
		if req.EstimatedArrival != nil {
			eta := req.EstimatedArrival.UTC()
			inc.Assignment.EstimatedArrival = &eta
			notes += ", ETA " + eta.Format(time.RFC3339)
		}
		inc.Append(domain.TimelineEntry{
			Timestamp: now,
			Status:    inc.Status,
			Action:    domain.ActionAccepted,
			Notes:     notes,
			ActorID:   actor.ID,
			DriverID:  driverID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Response == domain.ResponseDecline {
		d.lifecycle.emit(ctx, inc, domain.NotificationAssignmentDecline,
			fmt.Sprintf("Driver %s declined rescue request %s", driverID, inc.RequestID), driverID,
			map[string]string{"reason": req.Reason})
		return inc, nil
	}
	d.lifecycle.emit(ctx, inc, domain.NotificationAssignmentAccept,
		fmt.Sprintf("Driver %s accepted rescue request %s", driverID, inc.RequestID), driverID, nil)
	return inc, nil
}

func (d *Dispatcher) UpdateProgress(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.ProgressRequest) (*domain.Incident, error) {
	const op = "service.Dispatcher.UpdateProgress"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	target, err := domain.ParseStatus(string(req.Status))
	if err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	if !driverTargets[target] {
		return nil, fmt.Errorf("%s: drivers cannot set %s: %w", op, target, e.ErrInvalidTransition)
	}
	coords, err := optionalPoint(op, req.Coordinates)
	if err != nil {
		return nil, err
	}

	var snapshot *domain.FacilitySnapshot
	if req.FacilityID != "" {
		f, err := d.facilities.Get(ctx, req.FacilityID)
		if err != nil {
			return nil, fmt.Errorf("%s: facility %s: %w", op, req.FacilityID, err)
		}
		snapshot = &domain.FacilitySnapshot{
			FacilityID:  f.ID,
			Name:        f.Name,
			Address:     f.Address,
			Contact:     f.Contact,
			Coordinates: f.Coordinates,
		}
	}

	var driverID string
	inc, err := d.lifecycle.mutate(ctx, op, id, func(inc *domain.Incident, now time.Time) error {
		if inc.Status.Terminal() {
			return fmt.Errorf("incident is %s: %w", inc.Status, e.ErrInvalidTransition)
		}
		if inc.Assignment == nil || !actor.IsDriver(inc.Assignment.DriverID) {
			return e.ErrForbidden
		}
		driverID = inc.Assignment.DriverID
		if snapshot != nil {
			snapshot.SnapshotAt = now
			inc.Facility = snapshot
		}
		return applyTransition(inc, target, domain.TimelineEntry{
			Action:      domain.ActionProgress,
			Notes:       req.Notes,
			ActorID:     actor.ID,
			DriverID:    driverID,
			Coordinates: coords,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	if coords != nil && d.locator != nil {
		if err := d.locator.Upsert(ctx, driverID, *coords); err != nil {
			d.logger.Warn("driver location update failed", slog.String("driver_id", driverID), slog.Any("error", err))
		}
	}
	d.lifecycle.emitTransition(ctx, inc, driverID)
	return inc, nil
}

// ListNearbyIncidents returns open incidents around a point, nearest first.
func (d *Dispatcher) ListNearbyIncidents(ctx context.Context, req domain.NearbyRequest) ([]domain.NearbyIncident, error) {
	const op = "service.Dispatcher.ListNearbyIncidents"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	origin := geo.Point{Lat: req.Lat, Lng: req.Lng}
	radius := geo.KM(orDefault(req.RadiusKM, d.cfg.IncidentRadiusKM))
	limit := req.Limit
	if limit <= 0 {
		limit = d.cfg.ListLimit
	}

	open, err := d.repo.ListOpenWithin(ctx, origin, radius)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[string]*domain.Incident, len(open))
	entries := make([]geo.Entry, 0, len(open))
	for _, inc := range open {
		if inc.Status.Terminal() {
			continue
		}
		key := inc.ID.String()
		byID[key] = inc
		entries = append(entries, geo.Entry{ID: key, Point: inc.Location.Coordinates})
	}

	ranked := geo.Nearest(entries, origin, radius, nil, limit)
	out := make([]domain.NearbyIncident, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, domain.NearbyIncident{Incident: byID[c.ID], DistanceMeters: c.DistanceMeters})
	}
	return out, nil
}

// ListNearbyFacilities excludes facilities without capacity, and non-emergency
// facilities when EmergencyOnly is set.
func (d *Dispatcher) ListNearbyFacilities(ctx context.Context, req domain.NearbyRequest) ([]domain.NearbyFacility, error) {
	const op = "service.Dispatcher.ListNearbyFacilities"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	origin := geo.Point{Lat: req.Lat, Lng: req.Lng}
	radius := geo.KM(orDefault(req.RadiusKM, d.cfg.FacilityRadiusKM))
	limit := req.Limit
	if limit <= 0 {
		limit = d.cfg.ListLimit
	}

	all, err := d.facilities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byID := make(map[string]domain.Facility, len(all))
	entries := make([]geo.Entry, 0, len(all))
	for _, f := range all {
		byID[f.ID] = f
		entries = append(entries, geo.Entry{ID: f.ID, Point: f.Coordinates})
	}

	ranked := geo.Nearest(entries, origin, radius, func(id string) bool {
		f := byID[id]
		if f.Capacity <= 0 {
			return false
		}
		return !req.EmergencyOnly || f.AcceptsEmergencies
	}, limit)

	out := make([]domain.NearbyFacility, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, domain.NearbyFacility{Facility: byID[c.ID], DistanceMeters: c.DistanceMeters})
	}
	return out, nil
}

// FacilitiesForIncident searches around the incident location; emergencies only
// see facilities that accept them.
func (d *Dispatcher) FacilitiesForIncident(ctx context.Context, id uuid.UUID, radiusKM float64, limit int) ([]domain.NearbyFacility, error) {
	inc, err := d.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.ListNearbyFacilities(ctx, domain.NearbyRequest{
		Lat:           inc.Location.Coordinates.Lat,
		Lng:           inc.Location.Coordinates.Lng,
		RadiusKM:      radiusKM,
		Limit:         limit,
		EmergencyOnly: inc.IsEmergency,
	})
}

func (d *Dispatcher) UpdateDriverLocation(ctx context.Context, actor domain.Actor, req domain.DriverLocationRequest) error {
	const op = "service.Dispatcher.UpdateDriverLocation"

	if actor.Role != domain.RoleDriver || actor.ID == "" {
		return fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if err := validator.ValidateStruct(req); err != nil {
		return e.Invalid(op, err.Error())
	}
	if _, err := d.drivers.Get(ctx, actor.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := d.locator.Upsert(ctx, actor.ID, geo.Point{Lat: req.Lat, Lng: req.Lng}); err != nil {
		d.logger.Error("driver location upsert failed", slog.String("driver_id", actor.ID), slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
