package nav

import (
	"net/url"
	"testing"

	"github.com/desertthunder/shelf/internal/session"
)

func TestLocation(t *testing.T) {
	t.Run("ParseLocation", func(t *testing.T) {
		tests := []struct {
			raw      string
			path     string
			genre    string
			wantRepr string
		}{
			{"/MyBooks?genre=Fiction", "/MyBooks", "Fiction", "/MyBooks?genre=Fiction"},
			{"explore", "/explore", "", "/explore"},
			{"/", "/", "", "/"},
			{"/MyBooks?genre=Sci+Fi&page=2", "/MyBooks", "Sci Fi", "/MyBooks?genre=Sci+Fi&page=2"},
		}

		for _, tt := range tests {
			t.Run(tt.raw, func(t *testing.T) {
				loc, err := ParseLocation(tt.raw)
				if err != nil {
					t.Fatalf("ParseLocation() error = %v", err)
				}
				if loc.Path != tt.path {
					t.Errorf("Path = %q, want %q", loc.Path, tt.path)
				}
				if got := loc.Query.Get("genre"); got != tt.genre {
					t.Errorf("genre = %q, want %q", got, tt.genre)
				}
				if loc.String() != tt.wantRepr {
					t.Errorf("String() = %q, want %q", loc.String(), tt.wantRepr)
				}
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseLocation("/%zz"); err == nil {
			t.Error("expected error for bad escape")
		}
	})
}

func TestHistory(t *testing.T) {
	t.Run("Push and Back", func(t *testing.T) {
		var changes []string
		h := NewHistory(Location{})
		h.OnChange(func(l Location) { changes = append(changes, l.Path) })

		h.Navigate("/home")
		h.Push(Location{Path: "/MyBooks", Query: url.Values{"page": {"2"}}})

		if h.Len() != 3 {
			t.Fatalf("expected 3 entries, got %d", h.Len())
		}
		if h.Current().String() != "/MyBooks?page=2" {
			t.Errorf("Current() = %s", h.Current())
		}

		loc, ok := h.Back()
		if !ok || loc.Path != "/home" {
			t.Errorf("Back() = %v, %v", loc, ok)
		}
		h.Back()
		if _, ok := h.Back(); ok {
			t.Error("Back() at first entry should report false")
		}
		if h.Path() != "/" {
			t.Errorf("Path() = %s, want /", h.Path())
		}

		want := []string{"/home", "/MyBooks", "/home", "/"}
		if len(changes) != len(want) {
			t.Fatalf("changes = %v, want %v", changes, want)
		}
		for i := range want {
			if changes[i] != want[i] {
				t.Errorf("changes[%d] = %s, want %s", i, changes[i], want[i])
			}
		}
	})

	t.Run("ReplaceQuery does not grow history", func(t *testing.T) {
		h := NewHistory(Location{Path: "/MyBooks"})
		notified := false
		h.OnChange(func(Location) { notified = true })

		h.ReplaceQuery(url.Values{"genre": {"Fiction"}})
		h.ReplaceQuery(url.Values{"genre": {"Fiction"}, "status": {"reading"}})

		if h.Len() != 1 {
			t.Errorf("expected 1 entry, got %d", h.Len())
		}
		if h.Current().String() != "/MyBooks?genre=Fiction&status=reading" {
			t.Errorf("Current() = %s", h.Current())
		}
		if notified {
			t.Error("ReplaceQuery should not notify listeners")
		}
	})
}

func TestRouter(t *testing.T) {
	router := NewRouter(nil, "/", "/home")
	none := session.Status{State: session.Unauthenticated}
	active := session.Status{State: session.Active}

	tests := []struct {
		name     string
		path     string
		status   session.Status
		screen   Screen
		redirect string
	}{
		{"landing as guest", "/", none, ScreenLanding, ""},
		{"login with session goes home", "/login", active, ScreenLogin, "/home"},
		{"protected without session goes to landing", "/MyBooks", none, ScreenLibrary, "/"},
		{"protected with session renders", "/wishlist", active, ScreenWishlist, ""},
		{"book details captures id", "/book-details/abc123", active, ScreenBook, ""},
		{"unknown path falls back", "/settings", active, "", "/"},
		{"book details without id falls back", "/book-details/", active, "", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := router.Resolve(tt.path, tt.status)
			if res.Route.Screen != tt.screen {
				t.Errorf("Screen = %q, want %q", res.Route.Screen, tt.screen)
			}
			if res.Redirect != tt.redirect {
				t.Errorf("Redirect = %q, want %q", res.Redirect, tt.redirect)
			}
		})
	}

	t.Run("params", func(t *testing.T) {
		res := router.Resolve("/book-details/abc123", active)
		if res.Params["id"] != "abc123" {
			t.Errorf("id = %q", res.Params["id"])
		}
	})

	t.Run("every protected route redirects without session", func(t *testing.T) {
		for _, r := range DefaultRoutes {
			if r.Access != Protected {
				continue
			}
			path := r.Pattern
			if r.Screen == ScreenBook {
				path = "/book-details/x"
			}
			if res := router.Resolve(path, none); res.Redirect != "/" {
				t.Errorf("%s: Redirect = %q", path, res.Redirect)
			}
		}
	})
}
