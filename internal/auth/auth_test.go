package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123"

func TestTokenService_RoundTrip(t *testing.T) {
	svc := NewTokenService(secret, "rescue-dispatch", time.Hour)

	tok, err := svc.Issue(domain.Actor{ID: "drv-1", Name: "Kamal", Role: domain.RoleDriver})
	require.NoError(t, err)

	claims, err := svc.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: "drv-1", Name: "Kamal", Role: domain.RoleDriver}, claims.Actor())
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(secret, "rescue-dispatch", time.Hour)
	tok, err := svc.Issue(domain.Actor{ID: "op-1", Role: domain.RoleOperator})
	require.NoError(t, err)

	other := NewTokenService("another-secret-0123456", "rescue-dispatch", time.Hour)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	wrongIssuer := NewTokenService(secret, "someone-else", time.Hour)
	_, err = wrongIssuer.Parse(tok)
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	expired := NewTokenService(secret, "rescue-dispatch", time.Hour)
	expired.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = expired.Parse(tok)
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "op-1", Role: domain.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(unsigned)
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	_, err = svc.Issue(domain.Actor{ID: "x", Role: "superuser"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware(t *testing.T) {
	svc := NewTokenService(secret, "rescue-dispatch", time.Hour)
	adminTok, _ := svc.Issue(domain.Actor{ID: "adm-1", Role: domain.RoleAdmin})
	driverTok, _ := svc.Issue(domain.Actor{ID: "drv-1", Role: domain.RoleDriver})

	var seen domain.Actor
	var seenOK bool
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, seenOK = ActorFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	strict := Authenticate(svc)(final)
	assert.Equal(t, http.StatusUnauthorized, serve(strict, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(strict, "Bearer garbage").Code)
	assert.Equal(t, http.StatusNoContent, serve(strict, "Bearer "+driverTok).Code)
	assert.Equal(t, "drv-1", seen.ID)

	optional := Optional(svc)(final)
	assert.Equal(t, http.StatusNoContent, serve(optional, "").Code)
	assert.False(t, seenOK)
	assert.Equal(t, http.StatusUnauthorized, serve(optional, "Bearer garbage").Code)

	adminOnly := Authenticate(svc)(RequireRole(domain.RoleAdmin)(final))
	assert.Equal(t, http.StatusForbidden, serve(adminOnly, "Bearer "+driverTok).Code)
	assert.Equal(t, http.StatusNoContent, serve(adminOnly, "bearer "+adminTok).Code)
	assert.Equal(t, domain.RoleAdmin, seen.Role)
}
