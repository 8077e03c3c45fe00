package dispatch

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"rescueDispatch/internal/api/handlers/http/presenter"
)

const maxBody = 1 << 20

func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := presenter.StatusFor(err)
	l := h.log(r)

	if code >= http.StatusInternalServerError {
		l.Error("handler error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	} else {
		l.Warn("request rejected",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", code),
			slog.Any("error", err),
		)
	}
	presenter.WriteError(w, code, msg)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		presenter.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		presenter.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	return true
}
