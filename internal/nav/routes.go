package nav

import (
	"strings"

	"github.com/desertthunder/shelf/internal/session"
)

// Access is the guard applied to a route.
type Access int

const (
	// GuestOnly routes redirect home when a token is present.
	GuestOnly Access = iota
	// Protected routes redirect to landing when no token is present.
	Protected
)

// Screen identifies a view.
type Screen string

const (
	ScreenLanding   Screen = "landing"
	ScreenLogin     Screen = "login"
	ScreenSignup    Screen = "signup"
	ScreenHome      Screen = "home"
	ScreenConsole   Screen = "console"
	ScreenAnalytics Screen = "analytics"
	ScreenLibrary   Screen = "library"
	ScreenBook      Screen = "book"
	ScreenProfile   Screen = "profile"
	ScreenExplore   Screen = "explore"
	ScreenWishlist  Screen = "wishlist"
)

// Route maps a path pattern to a screen. Segments starting with ':' capture a parameter.
type Route struct {
	Pattern string
	Screen  Screen
	Access  Access
}

// DefaultRoutes is the route table of the client.
var DefaultRoutes = []Route{
	{"/", ScreenLanding, GuestOnly},
	{"/login", ScreenLogin, GuestOnly},
	{"/signup", ScreenSignup, GuestOnly},
	{"/home", ScreenHome, Protected},
	{"/console", ScreenConsole, Protected},
	{"/analytics", ScreenAnalytics, Protected},
	{"/MyBooks", ScreenLibrary, Protected},
	{"/book-details/:id", ScreenBook, Protected},
	{"/profile", ScreenProfile, Protected},
	{"/explore", ScreenExplore, Protected},
	{"/wishlist", ScreenWishlist, Protected},
}

// Match reports whether path matches the pattern and returns captured parameters.
func (r Route) Match(path string) (map[string]string, bool) {
	want := strings.Split(strings.Trim(r.Pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return nil, false
	}

	params := map[string]string{}
	for i, seg := range want {
		switch {
		case strings.HasPrefix(seg, ":"):
			if got[i] == "" {
				return nil, false
			}
			params[seg[1:]] = got[i]
		case seg != got[i]:
			return nil, false
		}
	}
	return params, true
}

// Resolution is the result of routing a path.
type Resolution struct {
	Route    Route
	Params   map[string]string
	Redirect string // non-empty when the guard or fallback sends the user elsewhere
}

// Router resolves paths against a route table and applies the route guards.
type Router struct {
	routes   []Route
	fallback string
	auth     session.Guard
	guest    session.Guard
}

// NewRouter builds a router over routes. Unknown paths fall back to landing.
func NewRouter(routes []Route, landing, home string) *Router {
	if routes == nil {
		routes = DefaultRoutes
	}
	return &Router{
		routes:   routes,
		fallback: landing,
		auth:     session.RequireAuth(landing),
		guest:    session.RequireGuest(home),
	}
}

// Resolve finds the route for path and evaluates its guard against st.
func (r *Router) Resolve(path string, st session.Status) Resolution {
	for _, route := range r.routes {
		params, ok := route.Match(path)
		if !ok {
			continue
		}

		guard := r.guest
		if route.Access == Protected {
			guard = r.auth
		}
		res := Resolution{Route: route, Params: params}
		if d := guard(st); !d.Allow {
			res.Redirect = d.Redirect
		}
		return res
	}

	return Resolution{Redirect: r.fallback}
}
