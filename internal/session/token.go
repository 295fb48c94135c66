package session

import (
	"fmt"
	"time"

	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// State is the coarse session state derived from the stored token.
type State int

const (
	Unauthenticated State = iota
	Active
	Expired
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Claims is the payload of a bearer token issued by the library backend.
type Claims struct {
	UserID   string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Subject returns the account id, preferring the "id" claim over "sub".
func (c *Claims) Subject() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}

// Status is the single view of the session shared by the guards and the monitor.
type Status struct {
	State  State
	TTL    time.Duration // remaining lifetime, only set when Active
	Claims *Claims       // nil when Unauthenticated or the token is malformed
}

// Present reports whether a token is stored, regardless of validity.
func (s Status) Present() bool { return s.State != Unauthenticated }

// Decode parses raw without verifying its signature.
func Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedToken, err)
	}
	return claims, nil
}

// Inspect classifies raw at instant now. A token whose exp is at or before now, or that has no exp, is expired.
func Inspect(raw string, now time.Time) Status {
	if raw == "" {
		return Status{State: Unauthenticated}
	}

	claims, err := Decode(raw)
	if err != nil {
		return Status{State: Expired}
	}

	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return Status{State: Expired, Claims: claims}
	}

	return Status{State: Active, TTL: claims.ExpiresAt.Sub(now), Claims: claims}
}

// IsExpired reports whether raw should be treated as expired at now. Missing tokens are expired.
func IsExpired(raw string, now time.Time) bool {
	return Inspect(raw, now).State != Active
}
