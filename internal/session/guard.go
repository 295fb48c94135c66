package session

// Decision is the outcome of a [Guard].
type Decision struct {
	Allow    bool
	Redirect string
}

// Guard decides whether a view may render for the given status.
type Guard func(Status) Decision

// RequireAuth allows rendering when a token is present and redirects to landing otherwise.
func RequireAuth(landing string) Guard {
	return func(st Status) Decision {
		if !st.Present() {
			return Decision{Redirect: landing}
		}
		return Decision{Allow: true}
	}
}

// RequireGuest allows rendering when no token is present and redirects to home otherwise.
func RequireGuest(home string) Guard {
	return func(st Status) Decision {
		if st.Present() {
			return Decision{Redirect: home}
		}
		return Decision{Allow: true}
	}
}
