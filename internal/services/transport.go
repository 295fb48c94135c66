package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/desertthunder/shelf/internal/shared"
	"golang.org/x/oauth2"
)

// bearerTransport attaches the stored token through [oauth2.Transport] and passes requests through
// untouched when no token is stored (login, signup).
type bearerTransport struct {
	source oauth2.TokenSource
	base   http.RoundTripper
}

// NewAuthClient returns a client whose requests carry the bearer token from source when there is one.
func NewAuthClient(source oauth2.TokenSource, timeout time.Duration, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &bearerTransport{source: source, base: base},
	}
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.source.Token()
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		return t.base.RoundTrip(req)
	case err != nil:
		if req.Body != nil {
			req.Body.Close()
		}
		return nil, err
	}

	inner := &oauth2.Transport{Source: oauth2.StaticTokenSource(tok), Base: t.base}
	return inner.RoundTrip(req)
}
