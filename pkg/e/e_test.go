package e_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rescueDispatch/pkg/e"
)

func TestWrapError_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   error
		want error
	}{
		{"deadline", context.DeadlineExceeded, e.ErrDeadline},
		{"canceled", context.Canceled, e.ErrCanceled},
		{"no rows", pgx.ErrNoRows, e.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505"}, e.ErrUniqueViolation},
		{"check", &pgconn.PgError{Code: "23514"}, e.ErrInvalidInput},
		{"serialization", &pgconn.PgError{Code: "40001"}, e.ErrConflict},
		{"other pg", &pgconn.PgError{Code: "XX000"}, e.ErrInternal},
		{"domain conflict", fmt.Errorf("assign: %w", e.ErrConflict), e.ErrConflict},
		{"state", e.ErrInvalidTransition, e.ErrInvalidTransition},
		{"unknown", errors.New("boom"), e.ErrInternal},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := e.WrapError(context.Background(), "op", tc.in)
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestWrapError_Nil(t *testing.T) {
	if err := e.WrapError(context.Background(), "op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestInvalid(t *testing.T) {
	err := e.Invalid("service.Create", "reporter phone required")
	if !errors.Is(err, e.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	var v *e.ValidationError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &v) || v.Reason != "reporter phone required" || v.Op != "service.Create" {
		t.Fatalf("validation error = %+v", v)
	}
	if err.Error() != "service.Create: reporter phone required: invalid input" {
		t.Fatalf("message = %q", err.Error())
	}
}
