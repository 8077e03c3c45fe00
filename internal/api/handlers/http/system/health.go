package system

import (
	"context"
	"net/http"
	"time"

	"log/slog"

	"rescueDispatch/internal/api/handlers/http/presenter"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is a named dependency checked by the health endpoint.
type Check struct {
	Name   string
	Pinger Pinger
}

type Handler struct {
	logger  *slog.Logger
	checks  []Check
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, checks ...Check) *Handler {
	return &Handler{logger: logger, checks: checks, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func (h *Handler) SystemHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	code := http.StatusOK
	if len(h.checks) > 0 {
		resp.Dependencies = make(map[string]string, len(h.checks))
	}

	for _, c := range h.checks {
		if err := c.Pinger.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", slog.String("dependency", c.Name), slog.Any("error", err))
			resp.Dependencies[c.Name] = "down"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Dependencies[c.Name] = "up"
	}

	presenter.WriteJSON(w, code, resp)
}
