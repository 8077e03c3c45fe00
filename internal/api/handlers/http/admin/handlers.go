package admin

import (
	"context"
	"log/slog"
	"net/http"

	"rescueDispatch/internal/api/handlers/http/presenter"
	"rescueDispatch/internal/auth"
	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/media"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type AdminIncidents interface {
	Lookup(ctx context.Context, ref string) (*domain.Incident, error)
	Transition(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.TransitionRequest) (*domain.Incident, error)
	AdminUpdate(ctx context.Context, actor domain.Actor, id uuid.UUID, upd domain.AdminIncidentUpdate) (*domain.Incident, error)
	AddNote(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.NoteRequest) (*domain.Incident, error)
	Retriage(ctx context.Context, actor domain.Actor, id uuid.UUID, req domain.RetriageRequest) (*domain.Incident, error)
}

type Handler struct {
	logger *slog.Logger
	Admin  AdminIncidents
	media  media.Resolver
}

func NewHandler(logger *slog.Logger, admin AdminIncidents, resolver media.Resolver) *Handler {
	return &Handler{
		logger: logger,
		Admin:  admin,
		media:  resolver,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

func (h *Handler) AdminIncidentTransition(w http.ResponseWriter, r *http.Request) {
	var req domain.TransitionRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.apply(w, r, "transition", func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
		return h.Admin.Transition(ctx, actor, id, req)
	})
}

func (h *Handler) AdminIncidentUpdate(w http.ResponseWriter, r *http.Request) {
	var upd domain.AdminIncidentUpdate
	if !h.decode(w, r, &upd) {
		return
	}
	h.apply(w, r, "update", func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
		return h.Admin.AdminUpdate(ctx, actor, id, upd)
	})
}

func (h *Handler) AdminIncidentNote(w http.ResponseWriter, r *http.Request) {
	var req domain.NoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.apply(w, r, "note", func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
		return h.Admin.AddNote(ctx, actor, id, req)
	})
}

func (h *Handler) AdminIncidentRetriage(w http.ResponseWriter, r *http.Request) {
	var req domain.RetriageRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.apply(w, r, "retriage", func(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Incident, error) {
		return h.Admin.Retriage(ctx, actor, id, req)
	})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, domain.Actor, uuid.UUID) (*domain.Incident, error)) {
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

	l.Info("admin action applied",
		slog.String("action", action),
		slog.String("request_id", inc.RequestID),
		slog.String("status", string(inc.Status)),
		slog.String("actor", actor.ID),
	)
	presenter.WriteJSON(w, http.StatusOK, presenter.Incident(r.Context(), h.media, inc))
}

func (h *Handler) incidentID(r *http.Request) (uuid.UUID, error) {
	ref := chi.URLParam(r, "id")
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}
	inc, err := h.Admin.Lookup(r.Context(), ref)
	if err != nil {
		return uuid.Nil, err
	}
	return inc.ID, nil
}
