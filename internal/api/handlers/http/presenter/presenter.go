// Package presenter holds the response helpers shared by the HTTP handlers.
package presenter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"rescueDispatch/internal/domain"
	"rescueDispatch/internal/media"
	"rescueDispatch/pkg/e"
)

func WriteJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, map[string]string{"error": msg})
}

// StatusFor maps service errors onto HTTP status codes. The body carries the
// sentinel text or a validation reason, never the wrapped op chain.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrInvalidInput), errors.Is(err, e.ErrInvalidCoordinates):
		var v *e.ValidationError
		if errors.As(err, &v) && v.Reason != "" {
			return http.StatusBadRequest, v.Reason
		}
		if errors.Is(err, e.ErrInvalidCoordinates) {
			return http.StatusBadRequest, e.ErrInvalidCoordinates.Error()
		}
		return http.StatusBadRequest, e.ErrInvalidInput.Error()
	case errors.Is(err, e.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, e.ErrConflict), errors.Is(err, e.ErrUniqueViolation):
		return http.StatusConflict, e.ErrConflict.Error()
	case errors.Is(err, e.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, e.ErrInvalidTransition.Error()
	case errors.Is(err, e.ErrDeadline), errors.Is(err, e.ErrCanceled):
		return http.StatusServiceUnavailable, "request timed out"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// Incident returns a copy with photo references replaced by fetchable URLs.
func Incident(ctx context.Context, r media.Resolver, inc *domain.Incident) *domain.Incident {
	if inc == nil || r == nil {
		return inc
	}
	out := inc.Clone()
	out.Photos = media.ResolveAll(ctx, r, inc.Photos)
	if inc.Animal.PhotoRef != "" {
		if u, err := r.URL(ctx, inc.Animal.PhotoRef); err == nil {
			out.Animal.PhotoRef = u
		}
	}
	return out
}

func Incidents(ctx context.Context, r media.Resolver, list []*domain.Incident) []*domain.Incident {
	out := make([]*domain.Incident, 0, len(list))
	for _, inc := range list {
		out = append(out, Incident(ctx, r, inc))
	}
	return out
}

func ParseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// ParseFloat reports whether the value was present at all.
func ParseFloat(s string) (float64, bool, error) {
	if s == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return f, true, nil
}
