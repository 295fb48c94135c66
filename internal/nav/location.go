// Package nav models the client's location: a path plus query string, a history of locations, and the
// table of routes with the guard that protects each one.
package nav

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Location is a path with its query parameters. Its string form is what the location bar shows and
// what `shelf tui --url` accepts.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation parses "/path?query". A missing leading slash is added.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}

	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Location{Path: path, Query: u.Query()}, nil
}

func (l Location) String() string {
	if q := l.Query.Encode(); q != "" {
		return l.Path + "?" + q
	}
	return l.Path
}

// History is a stack of visited locations. The top entry is the current location.
type History struct {
	mu        sync.RWMutex
	entries   []Location
	listeners []func(Location)
}

func NewHistory(start Location) *History {
	if start.Path == "" {
		start.Path = "/"
	}
	return &History{entries: []Location{start}}
}

// OnChange registers fn to run after every path change ([History.Push], [History.Navigate], [History.Back]).
// Query replacement does not notify.
func (h *History) OnChange(fn func(Location)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

func (h *History) Current() Location {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[len(h.entries)-1]
}

func (h *History) Path() string { return h.Current().Path }

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Navigate pushes path with an empty query.
func (h *History) Navigate(path string) {
	loc, err := ParseLocation(path)
	if err != nil {
		loc = Location{Path: "/"}
	}
	h.Push(loc)
}

// Push appends loc and notifies listeners.
func (h *History) Push(loc Location) {
	h.mu.Lock()
	h.entries = append(h.entries, loc)
	listeners := append([]func(Location){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
}

// ReplaceQuery rewrites the query of the current entry without growing history.
func (h *History) ReplaceQuery(q url.Values) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[len(h.entries)-1].Query = q
}

// Back pops the current entry. It reports false when already at the first entry.
func (h *History) Back() (Location, bool) {
	h.mu.Lock()
	if len(h.entries) == 1 {
		h.mu.Unlock()
		return h.entries[0], false
	}
	h.entries = h.entries[:len(h.entries)-1]
	loc := h.entries[len(h.entries)-1]
	listeners := append([]func(Location){}, h.listeners...)
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
	return loc, true
}
