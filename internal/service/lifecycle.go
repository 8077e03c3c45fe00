package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/geo"
	"rescueDispatch/internal/metrics"
	"rescueDispatch/pkg/e"
	"rescueDispatch/pkg/validator"

	"github.com/google/uuid"
)

// Lifecycle owns incident creation and every status change.
type Lifecycle struct {
	repo       IncidentRepository
	classifier Classifier
	emitter    Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	fallback   geo.Point
	now        func() time.Time
}

func NewLifecycle(
	repo IncidentRepository,
	classifier Classifier,
	emitter Emitter,
	m *metrics.Metrics,
	logger *slog.Logger,
	fallback geo.Point,
) *Lifecycle {
	return &Lifecycle{
		repo:       repo,
		classifier: classifier,
		emitter:    emitter,
		metrics:    m,
		logger:     logger,
		fallback:   fallback,
		now:        time.Now,
	}
}

func (l *Lifecycle) Create(ctx context.Context, actor domain.Actor, req domain.CreateIncidentRequest) (*domain.Incident, error) {
	const op = "service.Lifecycle.Create"

	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}

	priority, emergency, err := l.classifier.Classify(req.Condition)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	point, approximate := l.resolveCoordinates(req.Coordinates)
	if approximate && strings.TrimSpace(req.Address) == "" {
		return nil, e.Invalid(op, "address or valid coordinates required")
	}
	if approximate {
		l.logger.Warn("report coordinates missing or invalid, using fallback center",
			slog.String("address", req.Address),
			slog.Float64("lat", point.Lat),
			slog.Float64("lng", point.Lng),
		)
	}

	now := l.now().UTC()
	inc := &domain.Incident{
		ID: uuid.New(),
		Location: domain.Location{
			Address:     strings.TrimSpace(req.Address),
			Coordinates: point,
			City:        req.City,
			District:    req.District,
			Province:    req.Province,
			Approximate: approximate,
		},
		Animal: domain.Animal{
			Name:      req.AnimalName,
			Breed:     req.Breed,
			Size:      req.Size,
			AgeBand:   req.AgeBand,
			Color:     req.Color,
			Condition: req.ConditionText,
			Injuries:  append([]string(nil), req.Injuries...),
		},
		Reporter: domain.Reporter{
			Name:      req.ReporterName,
			Phone:     req.ReporterPhone,
			Email:     req.ReporterEmail,
			AccountID: req.LinkedAccountID,
		},
		ConditionDescriptor: strings.ToLower(strings.TrimSpace(req.Condition)),
		Notes:               req.Notes,
		Status:              domain.StatusPendingAssignment,
		Priority:            priority,
		IsEmergency:         emergency,
		Photos:              append([]string{}, req.PhotoRefs...),
		CreatedAt:           now,
	}
	if len(req.PhotoRefs) > 0 {
		inc.Animal.PhotoRef = req.PhotoRefs[0]
	}
	if inc.Reporter.AccountID == "" && actor.Role == domain.RoleReporter {
		inc.Reporter.AccountID = actor.ID
	}
	inc.Append(domain.TimelineEntry{
		Timestamp: now,
		Status:    domain.StatusPendingAssignment,
		Action:    domain.ActionCreated,
		Notes:     "Rescue request received",
		ActorID:   actor.ID,
	})

	for attempt := 0; ; attempt++ {
		inc.RequestID = newRequestID(now)
		err = l.repo.Create(ctx, inc)
		if err == nil {
			break
		}
		if errors.Is(err, e.ErrUniqueViolation) && attempt < 3 {
			continue
		}
		l.logger.Error("create incident failed", slog.String("op", op), slog.Any("error", err))
		return nil, err
	}

	l.metrics.IncidentCreated(priority)
	l.logger.Info("incident created",
		slog.String("id", inc.ID.String()),
		slog.String("request_id", inc.RequestID),
		slog.String("priority", string(inc.Priority)),
		slog.Bool("emergency", inc.IsEmergency),
	)

	kind := domain.NotificationIncidentCreated
	msg := fmt.Sprintf("New rescue request %s at %s", inc.RequestID, describeLocation(inc))
	if inc.IsEmergency {
		kind = domain.NotificationIncidentEmergency
		msg = fmt.Sprintf("EMERGENCY rescue request %s at %s", inc.RequestID, describeLocation(inc))
	}
	l.emit(ctx, inc, kind, msg, "", map[string]string{"condition": inc.ConditionDescriptor})

	return inc, nil
}

func (l *Lifecycle) resolveCoordinates(in *domain.CoordinatesInput) (geo.Point, bool) {
	if in == nil || in.Lat == nil || in.Lng == nil {
		return l.fallback, true
	}
	p := geo.Point{Lat: *in.Lat, Lng: *in.Lng}
	if !p.Valid() || p.IsZero() {
		return l.fallback, true
	}
	return p, false
}

func (l *Lifecycle) Get(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return l.repo.Get(ctx, id)
}

// Lookup resolves either the internal uuid or the external request id.
func (l *Lifecycle) Lookup(ctx context.Context, ref string) (*domain.Incident, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return l.repo.Get(ctx, id)
	}
	if ref == "" {
		return nil, e.Invalid("service.Lifecycle.Lookup", "empty reference")
	}
	return l.repo.GetByRequestID(ctx, strings.ToUpper(ref))
}

func (l *Lifecycle) List(ctx context.Context, filter domain.IncidentFilter) (domain.ListIncidentsResponse, error) {
	filter = filter.Normalize()
	items, total, err := l.repo.List(ctx, filter)
	if err != nil {
		return domain.ListIncidentsResponse{}, err
	}
	if items == nil {
		items = []*domain.Incident{}
	}
	return domain.ListIncidentsResponse{
		Incidents: items,
		Page:      filter.Page,
		Limit:     filter.Limit,
		Total:     total,
	}, nil
}

// Transition is the administrative status change surface.
func (l *Lifecycle) Transition(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.TransitionRequest) (*domain.Incident, error) {
	const op = "service.Lifecycle.Transition"

	if !actor.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	target, err := domain.ParseStatus(string(req.Status))
	if err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	if target == domain.StatusDriverAssigned {
		return nil, fmt.Errorf("%s: use driver assignment to reach %s: %w", op, target, e.ErrInvalidTransition)
	}
	coords, err := optionalPoint(op, req.Coordinates)
	if err != nil {
		return nil, err
	}

	var driverID string
	inc, err := l.mutate(ctx, op, id, func(inc *domain.Incident, now time.Time) error {
		if inc.Assignment != nil {
			driverID = inc.Assignment.DriverID
		}
		return applyTransition(inc, target, domain.TimelineEntry{
			Action:      domain.ActionTransition,
			Notes:       req.Notes,
			ActorID:     actor.ID,
			DriverID:    driverID,
			Coordinates: coords,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	l.emitTransition(ctx, inc, driverID)
	return inc, nil
}

// AddNote appends an administrative note without changing status; allowed on terminal incidents.
func (l *Lifecycle) AddNote(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.NoteRequest) (*domain.Incident, error) {
	const op = "service.Lifecycle.AddNote"

	if !actor.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}

	return l.mutate(ctx, op, id, func(inc *domain.Incident, now time.Time) error {
		inc.Append(domain.TimelineEntry{
			Timestamp: now,
			Status:    inc.Status,
			Action:    domain.ActionNote,
			Notes:     req.Notes,
			ActorID:   actor.ID,
		})
		return nil
	})
}

// AdminUpdate applies an allow-listed correction and records which fields changed.
func (l *Lifecycle) AdminUpdate(ctx context.Context, actor domain.Actor, id uuid.UUID, upd domain.AdminIncidentUpdate) (*domain.Incident, error) {
	const op = "service.Lifecycle.AdminUpdate"

	if actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if err := validator.ValidateStruct(upd); err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	if (upd.Lat == nil) != (upd.Lng == nil) {
		return nil, e.Invalid(op, "lat and lng must be updated together")
	}

	inc, err := l.mutate(ctx, op, id, func(inc *domain.Incident, now time.Time) error {
		changed := applyAdminUpdate(inc, upd)
		if len(changed) == 0 {
			return e.Invalid(op, "no fields to update")
		}
		inc.Append(domain.TimelineEntry{
			Timestamp: now,
			Status:    inc.Status,
			Action:    domain.ActionNote,
			Notes:     "Administrative correction: " + strings.Join(changed, ", "),
			ActorID:   actor.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.emit(ctx, inc, domain.NotificationIncidentUpdated,
		fmt.Sprintf("Rescue request %s corrected by administrator", inc.RequestID), "", nil)
	return inc, nil
}

func applyAdminUpdate(inc *domain.Incident, upd domain.AdminIncidentUpdate) []string {
	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}

	setString("address", &inc.Location.Address, upd.Address)
	setString("city", &inc.Location.City, upd.City)
	setString("district", &inc.Location.District, upd.District)
	setString("province", &inc.Location.Province, upd.Province)
	if upd.Lat != nil && upd.Lng != nil {
		p := geo.Point{Lat: *upd.Lat, Lng: *upd.Lng}
		if p != inc.Location.Coordinates {
			inc.Location.Coordinates = p
			inc.Location.Approximate = false
			changed = append(changed, "coordinates")
		}
	}
	setString("animal_name", &inc.Animal.Name, upd.AnimalName)
	setString("breed", &inc.Animal.Breed, upd.Breed)
	setString("size", &inc.Animal.Size, upd.Size)
	setString("age_band", &inc.Animal.AgeBand, upd.AgeBand)
	setString("color", &inc.Animal.Color, upd.Color)
	setString("condition_text", &inc.Animal.Condition, upd.ConditionText)
	setString("reporter_phone", &inc.Reporter.Phone, upd.ReporterPhone)
	setString("reporter_email", &inc.Reporter.Email, upd.ReporterEmail)
	setString("notes", &inc.Notes, upd.Notes)
	if len(upd.AddPhotoRefs) > 0 {
		inc.Photos = append(inc.Photos, upd.AddPhotoRefs...)
		if inc.Animal.PhotoRef == "" {
			inc.Animal.PhotoRef = inc.Photos[0]
		}
		changed = append(changed, "photos")
	}
	return changed
}

// Retriage re-classifies the incident explicitly; triage is otherwise never recomputed.
func (l *Lifecycle) Retriage(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.RetriageRequest) (*domain.Incident, error) {
	const op = "service.Lifecycle.Retriage"

	if !actor.IsStaff() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if err := validator.ValidateStruct(req); err != nil {
		return nil, e.Invalid(op, err.Error())
	}
	priority, emergency, err := l.classifier.Classify(req.Condition)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	inc, err := l.mutate(ctx, op, id, func(inc *domain.Incident, now time.Time) error {
		if inc.Status.Terminal() {
			return fmt.Errorf("incident is %s: %w", inc.Status, e.ErrInvalidTransition)
		}
		notes := fmt.Sprintf("Re-triaged %s/%s -> %s/%s", inc.ConditionDescriptor, inc.Priority,
			strings.ToLower(strings.TrimSpace(req.Condition)), priority)
		if req.Reason != "" {
			notes += ": " + req.Reason
		}
		inc.ConditionDescriptor = strings.ToLower(strings.TrimSpace(req.Condition))
		inc.Priority = priority
		inc.IsEmergency = emergency
		inc.Append(domain.TimelineEntry{
			Timestamp: now,
			Status:    inc.Status,
			Action:    domain.ActionRetriage,
			Notes:     notes,
			ActorID:   actor.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := domain.NotificationIncidentUpdated
	if inc.IsEmergency {
		kind = domain.NotificationIncidentEmergency
	}
	l.emit(ctx, inc, kind, fmt.Sprintf("Rescue request %s re-triaged to %s", inc.RequestID, inc.Priority), "", nil)
	return inc, nil
}

// mutate runs fn under the store's single-writer guard with a server-side timestamp.
func (l *Lifecycle) mutate(ctx context.Context, op string, id uuid.UUID, fn func(inc *domain.Incident, now time.Time) error) (*domain.Incident, error) {
	before := ""
	inc, err := l.repo.Update(ctx, id, func(inc *domain.Incident) error {
		before = string(inc.Status)
		return fn(inc, l.now().UTC())
	})
	if err != nil {
		if !isClientError(err) {
			l.logger.Error("incident update failed", slog.String("op", op), slog.String("id", id.String()), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if string(inc.Status) != before {
		l.metrics.Transition(inc.Status)
		l.logger.Info("incident transitioned",
			slog.String("op", op),
			slog.String("id", inc.ID.String()),
			slog.String("from", before),
			slog.String("to", string(inc.Status)),
		)
	}
	return inc, nil
}

// applyTransition validates the edge and applies status, completion, assignment
// clearing and exactly one timeline entry.
func applyTransition(inc *domain.Incident, target domain.IncidentStatus, entry domain.TimelineEntry, now time.Time) error {
	if !domain.CanTransition(inc.Status, target) {
		return fmt.Errorf("%s -> %s: %w", inc.Status, target, e.ErrInvalidTransition)
	}
	if target.Terminal() {
		c := &domain.Completion{CompletedAt: now, Outcome: target.Outcome()}
		if inc.Assignment != nil {
			c.DriverID = inc.Assignment.DriverID
			c.DriverName = inc.Assignment.DriverName
		}
		inc.Completion = c
	}
	if !target.Assigned() {
		inc.Assignment = nil
	}
	inc.Status = target
	entry.Timestamp = now
	entry.Status = target
	inc.Append(entry)
	return nil
}

func (l *Lifecycle) emitTransition(ctx context.Context, inc *domain.Incident, driverID string) {
	kind := domain.NotificationStatusChanged
	msg := fmt.Sprintf("Rescue request %s is now %s", inc.RequestID, inc.Status)
	meta := map[string]string{"status": string(inc.Status)}
	if inc.Completion != nil {
		kind = domain.NotificationIncidentCompleted
		msg = fmt.Sprintf("Rescue request %s closed: %s", inc.RequestID, inc.Completion.Outcome)
		meta["outcome"] = inc.Completion.Outcome
	}
	if notes := inc.LastEntry().Notes; notes != "" {
		meta["notes"] = notes
	}
	l.emit(ctx, inc, kind, msg, driverID, meta)
}

func (l *Lifecycle) emit(ctx context.Context, inc *domain.Incident, kind domain.NotificationType, msg, driverID string, meta map[string]string) {
	if l.emitter == nil {
		return
	}
	l.emitter.Emit(ctx, domain.Notification{
		Type:              kind,
		Message:           msg,
		RelatedIncidentID: inc.ID,
		RequestID:         inc.RequestID,
		RelatedDriverID:   driverID,
		Priority:          inc.Priority,
		IsEmergency:       inc.IsEmergency,
		Status:            inc.Status,
		Metadata:          meta,
	})
}

func describeLocation(inc *domain.Incident) string {
	if inc.Location.Address != "" {
		return inc.Location.Address
	}
	return fmt.Sprintf("%.5f,%.5f", inc.Location.Coordinates.Lat, inc.Location.Coordinates.Lng)
}

func optionalPoint(op string, in *domain.CoordinatesInput) (*geo.Point, error) {
	if in == nil || (in.Lat == nil && in.Lng == nil) {
		return nil, nil
	}
	if in.Lat == nil || in.Lng == nil {
		return nil, e.Invalid(op, "lat and lng must be given together")
	}
	p := geo.Point{Lat: *in.Lat, Lng: *in.Lng}
	if !p.Valid() {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	return &p, nil
}

func isClientError(err error) bool {
	for _, known := range []error{e.ErrNotFound, e.ErrConflict, e.ErrForbidden, e.ErrInvalidInput, e.ErrInvalidTransition, e.ErrInvalidCoordinates} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
