// Package auth is the Identity collaborator: HS256 bearer tokens carrying the
// caller's id, display name and role.
package auth

import (
	"fmt"
	"time"

	"rescueDispatch/internal/domain"
	"rescueDispatch/pkg/e"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string      `json:"uid"`
	Name   string      `json:"name"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Actor() domain.Actor {
	return domain.Actor{ID: c.UserID, Name: c.Name, Role: c.Role}
}

type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *TokenService) Issue(actor domain.Actor) (string, error) {
	const op = "auth.TokenService.Issue"

	if actor.ID == "" || !validRole(actor.Role) {
		return "", e.Invalid(op, "actor id and a known role are required")
	}

	now := s.now()
	claims := Claims{
		UserID: actor.ID,
		Name:   actor.Name,
		Role:   actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %v: %w", op, err, e.ErrInternal)
	}
	return signed, nil
}

// Parse rejects anything but a valid, unexpired HS256 token from this issuer.
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	const op = "auth.TokenService.Parse"

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, e.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, e.ErrUnauthorized)
	}
	if claims.UserID == "" || !validRole(claims.Role) {
		return nil, fmt.Errorf("%s: missing uid or role: %w", op, e.ErrUnauthorized)
	}
	return claims, nil
}

func validRole(r domain.Role) bool {
	switch r {
	case domain.RoleAdmin, domain.RoleOperator, domain.RoleDriver, domain.RoleReporter:
		return true
	}
	return false
}
