package presenter

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"rescueDispatch/pkg/e"
)

func TestStatusFor_HidesOpChain(t *testing.T) {
	cases := []struct {
		err  error
		code int
		msg  string
	}{
		{e.Invalid("service.Lifecycle.Create", "reporter phone required"), http.StatusBadRequest, "reporter phone required"},
		{fmt.Errorf("service.Lifecycle.Transition: %w", e.Invalid("service.Lifecycle.Transition", "unknown status")), http.StatusBadRequest, "unknown status"},
		{fmt.Errorf("postgres.IncidentStore.Create: %w", e.ErrInvalidInput), http.StatusBadRequest, "invalid input"},
		{fmt.Errorf("service.Lifecycle.Create: %w", e.ErrInvalidCoordinates), http.StatusBadRequest, "invalid coordinates"},
		{fmt.Errorf("service.Dispatcher.AssignDriver: incident is DriverAssigned: %w", e.ErrConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("postgres.IncidentStore.Create: %w", e.ErrUniqueViolation), http.StatusConflict, "conflict"},
		{fmt.Errorf("service.Lifecycle.Transition: Rescued -> DogPickedUp: %w", e.ErrInvalidTransition), http.StatusUnprocessableEntity, "invalid status transition"},
		{errors.New("pgx: connection reset"), http.StatusInternalServerError, "internal error"},
	}

	for _, tc := range cases {
		code, msg := StatusFor(tc.err)
		if code != tc.code || msg != tc.msg {
			t.Fatalf("%v: got %d %q, want %d %q", tc.err, code, msg, tc.code, tc.msg)
		}
		if strings.Contains(msg, "service.") || strings.Contains(msg, "postgres.") {
			t.Fatalf("%v: op chain leaked: %q", tc.err, msg)
		}
	}
}
