// Package cache holds the current user's profile and the identifier sets used for "in library" and
// "in wishlist" membership checks.
//
// The cache never refreshes itself. Callers that mutate the library or wishlist call [Cache.FetchLibraryIDs]
// or [Cache.FetchUser] afterwards to converge it.
package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
	"golang.org/x/sync/errgroup"
)

// Fetcher loads the data the cache is built from.
type Fetcher interface {
	Profile(ctx context.Context) (*models.User, error)
	Books(ctx context.Context) ([]models.Book, error)
}

// TokenReader reports the stored bearer token. An empty token makes fetches no-ops.
type TokenReader interface {
	Token() (string, error)
}

// IDSet is an immutable set of identifiers.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Cache is the process-wide user and library snapshot.
//
// Values are replaced wholesale under a lock, so readers see either the previous or the new value.
type Cache struct {
	fetcher Fetcher
	tokens  TokenReader
	logger  *log.Logger

	mu             sync.RWMutex
	user           *models.User
	wishlist       IDSet
	library        IDSet
	userLoading    bool
	libraryLoading bool
}

func New(fetcher Fetcher, tokens TokenReader, logger *log.Logger) *Cache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Cache{
		fetcher:  fetcher,
		tokens:   tokens,
		logger:   logger,
		wishlist: IDSet{},
		library:  IDSet{},
	}
}

func (c *Cache) hasToken() bool {
	token, err := c.tokens.Token()
	if err != nil {
		c.logger.Error("failed to read token", "error", err)
		return false
	}
	return token != ""
}

// FetchUser replaces the cached profile and wishlist set. Without a token it does nothing.
// On failure the previous values are kept and the error is returned.
func (c *Cache) FetchUser(ctx context.Context) error {
	if !c.hasToken() {
		return nil
	}

	c.setLoading(&c.userLoading, true)
	defer c.setLoading(&c.userLoading, false)

	user, err := c.fetcher.Profile(ctx)
	if err != nil {
		c.logger.Error("failed to fetch user", "error", err)
		return fmt.Errorf("failed to fetch user: %w", err)
	}

	c.SetUser(user)
	return nil
}

// FetchLibraryIDs replaces the library set with the union of each book's external and internal ids.
// Without a token it does nothing.
func (c *Cache) FetchLibraryIDs(ctx context.Context) error {
	if !c.hasToken() {
		return nil
	}

	c.setLoading(&c.libraryLoading, true)
	defer c.setLoading(&c.libraryLoading, false)

	books, err := c.fetcher.Books(ctx)
	if err != nil {
		c.logger.Error("failed to sync library ids", "error", err)
		return fmt.Errorf("failed to sync library ids: %w", err)
	}

	ids := make([]string, 0, len(books)*2)
	for _, b := range books {
		ids = append(ids, b.Identifiers()...)
	}
	library := NewIDSet(ids...)

	c.mu.Lock()
	c.library = library
	c.mu.Unlock()

	c.logger.Debug("library ids synced", "count", len(library))
	return nil
}

// Refresh runs both fetches concurrently and returns the first error.
func (c *Cache) Refresh(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.FetchUser(ctx) })
	g.Go(func() error { return c.FetchLibraryIDs(ctx) })
	return g.Wait()
}

// SetUser replaces the profile directly, as after a profile update. A nil user is ignored.
func (c *Cache) SetUser(u *models.User) {
	if u == nil {
		return
	}
	profile := *u
	wishlist := NewIDSet(u.WishlistIDs()...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &profile
	c.wishlist = wishlist
}

// Reset drops everything, as on logout.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.wishlist = IDSet{}
	c.library = IDSet{}
}

// User returns a copy of the cached profile, or nil before the first successful fetch.
func (c *Cache) User() *models.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Cache) WishlistIDs() IDSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wishlist
}

func (c *Cache) LibraryIDs() IDSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.library
}

func (c *Cache) InLibrary(id string) bool { return c.LibraryIDs().Has(id) }

func (c *Cache) InWishlist(id string) bool { return c.WishlistIDs().Has(id) }

// Loading reports whether the user and library fetches are in flight.
func (c *Cache) Loading() (user, library bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userLoading, c.libraryLoading
}

func (c *Cache) setLoading(flag *bool, v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*flag = v
}
