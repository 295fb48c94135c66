package session

import (
	"fmt"

	"github.com/desertthunder/shelf/internal/shared"
	"golang.org/x/oauth2"
)

type storeTokenSource struct {
	s *Session
}

// TokenSource exposes the stored token as an [oauth2.TokenSource]. It returns
// [shared.ErrNotAuthenticated] when nothing is stored.
func (s *Session) TokenSource() oauth2.TokenSource {
	return storeTokenSource{s: s}
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	raw, err := ts.s.Token()
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, fmt.Errorf("%w: no token stored", shared.ErrNotAuthenticated)
	}

	tok := &oauth2.Token{AccessToken: raw, TokenType: "Bearer"}
	if claims, err := Decode(raw); err == nil && claims.ExpiresAt != nil {
		tok.Expiry = claims.ExpiresAt.Time
	}
	return tok, nil
}
