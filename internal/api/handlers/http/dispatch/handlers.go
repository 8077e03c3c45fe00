package dispatch

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"rescueDispatch/internal/api/handlers/http/presenter"
	"rescueDispatch/internal/auth"
	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/media"
	"rescueDispatch/pkg/e"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type Incidents interface {
	Lookup(ctx context.Context, ref string) (*domain.Incident, error)
	List(ctx context.Context, filter domain.IncidentFilter) (domain.ListIncidentsResponse, error)
}

type Dispatch interface {
	AssignDriver(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.AssignDriverRequest) (*domain.Incident, error)
	AutoAssign(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error)
	CandidateDrivers(ctx context.Context, actor domain.Actor, id uuid.UUID, radiusKM float64, limit int) ([]domain.CandidateDriver, error)
	RespondToAssignment(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.RespondRequest) (*domain.Incident, error)
	UpdateProgress(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.ProgressRequest) (*domain.Incident, error)
	ListNearbyIncidents(ctx context.Context, req domain.NearbyRequest) ([]domain.NearbyIncident, error)
	ListNearbyFacilities(ctx context.Context, req domain.NearbyRequest) ([]domain.NearbyFacility, error)
	FacilitiesForIncident(ctx context.Context, id uuid.UUID, radiusKM float64, limit int) ([]domain.NearbyFacility, error)
	UpdateDriverLocation(ctx context.Context, actor domain.Actor, req domain.DriverLocationRequest) error
}

type StatsReader interface {
	DriverStatistics(ctx context.Context, actor domain.Actor, req domain.StatsRequest) (domain.DriverStats, error)
}

type Handler struct {
	logger    *slog.Logger
	Incidents Incidents
	Dispatch  Dispatch
	Stats     StatsReader
	media     media.Resolver
}

func NewHandler(logger *slog.Logger, incidents Incidents, dispatch Dispatch, stats StatsReader, resolver media.Resolver) *Handler {
	return &Handler{
		logger:    logger,
		Incidents: incidents,
		Dispatch:  dispatch,
		Stats:     stats,
		media:     resolver,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)
	l.Debug("ListIncidents", slog.String("query", r.URL.RawQuery))

	filter, err := parseFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	resp, err := h.Incidents.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	resp.Incidents = presenter.Incidents(r.Context(), h.media, resp.Incidents)

	l.Info("incidents listed", slog.Int("count", len(resp.Incidents)), slog.Int64("total", resp.Total))
	presenter.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetIncident(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	inc, err := h.Incidents.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if !canView(actor, inc) {
		h.handleError(w, r, e.ErrForbidden)
		return
	}

	presenter.WriteJSON(w, http.StatusOK, presenter.Incident(r.Context(), h.media, inc))
}

// canView lets reporters read only the reports linked to their own account.
func canView(actor domain.Actor, inc *domain.Incident) bool {
	switch actor.Role {
	case domain.RoleAdmin, domain.RoleOperator, domain.RoleDriver:
		return true
	case domain.RoleReporter:
		return actor.ID != "" && inc.Reporter.AccountID == actor.ID
	}
	return false
}

func (h *Handler) NearbyIncidents(w http.ResponseWriter, r *http.Request) {
	req, err := parseNearby(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	found, err := h.Dispatch.ListNearbyIncidents(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	for i := range found {
		found[i].Incident = presenter.Incident(r.Context(), h.media, found[i].Incident)
	}

	presenter.WriteJSON(w, http.StatusOK, map[string]any{"incidents": found})
}

func (h *Handler) NearbyFacilities(w http.ResponseWriter, r *http.Request) {
	req, err := parseNearby(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	found, err := h.Dispatch.ListNearbyFacilities(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	presenter.WriteJSON(w, http.StatusOK, map[string]any{"facilities": found})
}

func (h *Handler) Candidates(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	id, err := h.incidentID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	radius, limit, err := radiusAndLimit(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	found, err := h.Dispatch.CandidateDrivers(r.Context(), actor, id, radius, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	presenter.WriteJSON(w, http.StatusOK, map[string]any{"candidates": found})
}

func (h *Handler) IncidentFacilities(w http.ResponseWriter, r *http.Request) {
	id, err := h.incidentID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	radius, limit, err := radiusAndLimit(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	found, err := h.Dispatch.FacilitiesForIncident(r.Context(), id, radius, limit)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	presenter.WriteJSON(w, http.StatusOK, map[string]any{"facilities": found})
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignDriverRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.mutate(w, r, "assign", func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
		return h.Dispatch.AssignDriver(ctx, actor, id, req)
	})
}

func (h *Handler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, "auto_assign", h.Dispatch.AutoAssign)
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req domain.RespondRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.mutate(w, r, "respond", func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
		return h.Dispatch.RespondToAssignment(ctx, actor, id, req)
	})
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	var req domain.ProgressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.mutate(w, r, "progress", func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
		return h.Dispatch.UpdateProgress(ctx, actor, id, req)
	})
}

func (h *Handler) DriverStatistics(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	driverID := chi.URLParam(r, "id")
	if driverID == "me" {
		driverID = actor.ID
	}

	stats, err := h.Stats.DriverStatistics(r.Context(), actor, domain.StatsRequest{
		DriverID: driverID,
		Period:   domain.StatsPeriod(strings.ToLower(r.URL.Query().Get("period"))),
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	presenter.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var req domain.DriverLocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.Dispatch.UpdateDriverLocation(r.Context(), actor, req); err != nil {
		h.handleError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type mutation func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error)

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, action string, fn mutation) {
	l := h.log(r)
	actor, _ := auth.ActorFrom(r.Context())

	id, err := h.incidentID(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	inc, err := fn(r.Context(), actor, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("incident updated",
		slog.String("action", action),
		slog.String("request_id", inc.RequestID),
		slog.String("status", string(inc.Status)),
		slog.String("actor", actor.ID),
	)
	presenter.WriteJSON(w, http.StatusOK, presenter.Incident(r.Context(), h.media, inc))
}

// incidentID accepts either the uuid or the external request id.
func (h *Handler) incidentID(r *http.Request) (uuid.UUID, error) {
	ref := chi.URLParam(r, "id")
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	inc, err := h.Incidents.Lookup(r.Context(), ref)
	if err != nil {
		return uuid.Nil, err
	}
	return inc.ID, nil
}

func parseFilter(r *http.Request) (domain.IncidentFilter, error) {
	const op = "dispatch.parseFilter"

	q := r.URL.Query()
	filter := domain.IncidentFilter{
		Page:  presenter.ParseInt(q.Get("page"), 1),
		Limit: presenter.ParseInt(q.Get("limit"), 20),
	}
	if v := q.Get("status"); v != "" {
		st, err := domain.ParseStatus(v)
		if err != nil {
			return filter, e.Invalid(op, err.Error())
		}
		filter.Status = &st
	}
	if v := q.Get("priority"); v != "" {
		p, err := domain.ParsePriority(v)
		if err != nil {
			return filter, e.Invalid(op, err.Error())
		}
		filter.Priority = &p
	}
	if v := q.Get("emergency"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, e.Invalid(op, "emergency must be a boolean")
		}
		filter.Emergency = &b
	}
	return filter, nil
}

func parseNearby(r *http.Request) (domain.NearbyRequest, error) {
	const op = "dispatch.parseNearby"

	q := r.URL.Query()
	lat, okLat, errLat := presenter.ParseFloat(q.Get("lat"))
	lng, okLng, errLng := presenter.ParseFloat(q.Get("lng"))
	if errLat != nil || errLng != nil || !okLat || !okLng {
		return domain.NearbyRequest{}, e.Invalid(op, "lat and lng are required numbers")
	}
	radius, limit, err := radiusAndLimit(r)
	if err != nil {
		return domain.NearbyRequest{}, err
	}

	req := domain.NearbyRequest{Lat: lat, Lng: lng, RadiusKM: radius, Limit: limit}
	if v := q.Get("emergency_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.NearbyRequest{}, e.Invalid(op, "emergency_only must be a boolean")
		}
		req.EmergencyOnly = b
	}
	return req, nil
}

func radiusAndLimit(r *http.Request) (float64, int, error) {
	const op = "dispatch.radiusAndLimit"

	q := r.URL.Query()
	radius, _, err := presenter.ParseFloat(q.Get("radius_km"))
	if err != nil || radius < 0 {
		return 0, 0, e.Invalid(op, "radius_km must be a positive number")
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			return 0, 0, e.Invalid(op, "limit must be a non-negative integer")
		}
	}
	return radius, limit, nil
}
