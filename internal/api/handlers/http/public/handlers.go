package public

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"rescueDispatch/internal/api/handlers/http/presenter"
	"rescueDispatch/internal/auth"
	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/media"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const maxReportBody = 1 << 20

//go:generate mockgen -source=handlers.go -destination=mocks/mock.go
type ReportIntake interface {
	Create(ctx context.Context, actor domain.Actor, req domain.CreateIncidentRequest) (*domain.Incident, error)
}

type Handler struct {
	logger  *slog.Logger
	Reports ReportIntake
	media   media.Resolver
}

func NewHandler(logger *slog.Logger, reports ReportIntake, resolver media.Resolver) *Handler {
	return &Handler{
		logger:  logger,
		Reports: reports,
		media:   resolver,
	}
}

func (h *Handler) log(r *http.Request) *slog.Logger {
	reqID := chimw.GetReqID(r.Context())
	if reqID == "" {
		return h.logger
	}
	return h.logger.With(slog.String("request_id", reqID))
}

// CreateReport accepts anonymous reports; a bearer token only links the
// report to the caller's account.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	l := h.log(r)

	var req domain.CreateIncidentRequest

	dec := json.NewDecoder(io.LimitReader(r.Body, maxReportBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		l.Warn("invalid JSON", slog.String("error", err.Error()))
		presenter.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		presenter.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	actor, _ := auth.ActorFrom(r.Context())

	inc, err := h.Reports.Create(r.Context(), actor, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	l.Info("report accepted",
		slog.String("request_id", inc.RequestID),
		slog.String("priority", string(inc.Priority)),
		slog.Bool("emergency", inc.IsEmergency),
	)
	presenter.WriteJSON(w, http.StatusCreated, presenter.Incident(r.Context(), h.media, inc))
}

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := presenter.StatusFor(err)
	l := h.log(r)
	if code >= http.StatusInternalServerError {
		l.Error("handler error", slog.String("path", r.URL.Path), slog.Any("error", err))
	} else {
		l.Warn("request rejected", slog.String("path", r.URL.Path), slog.Int("status", code), slog.Any("error", err))
	}
	presenter.WriteError(w, code, msg)
}
