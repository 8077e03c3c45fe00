package admin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"rescueDispatch/internal/api/handlers/http/presenter"
)

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	l := h.log(r)

	code, msg := presenter.StatusFor(err)
	l.Error("handler error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status", code),
		slog.Any("error", err),
	)

	presenter.WriteError(w, code, msg)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.log(r).Warn("invalid JSON", slog.String("error", err.Error()))
		presenter.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
