package testing

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenSecret = "shelf-test-secret"

// MintToken signs a token for user id with the given role and expiry. A zero exp omits the claim.
func MintToken(t *testing.T, id, username, role string, exp time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"id":       id,
		"username": username,
		"role":     role,
	}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tokenSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}
