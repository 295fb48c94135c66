package ui

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/cache"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/nav"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	tu "github.com/desertthunder/shelf/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLibrary serves canned data and records filter requests.
type fakeLibrary struct {
	mu       sync.Mutex
	books    []models.Book
	requests []models.FilterRequest
	deleted  []string
}

var _ services.Library = (*fakeLibrary)(nil)

func (f *fakeLibrary) Login(context.Context, models.Credentials) (*models.AuthResult, error) {
	return nil, shared.ErrAuthFailed
}
func (f *fakeLibrary) Signup(context.Context, models.Registration) error {
	return nil
}
func (f *fakeLibrary) Profile(context.Context) (*models.User, error) {
	return &models.User{ID: "u1", Username: "ada", Role: models.RoleStudent}, nil
}
func (f *fakeLibrary) UpdateProfile(_ context.Context, u models.ProfileUpdate) (*models.User, error) {
	return &models.User{ID: "u1", Username: u.Username, Email: u.Email, Role: u.Role}, nil
}
func (f *fakeLibrary) Books(context.Context) ([]models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books, nil
}
func (f *fakeLibrary) FilterBooks(_ context.Context, req models.FilterRequest) (*models.FilterResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &models.FilterResult{Books: f.books, TotalPages: 1, OverallTotal: len(f.books), FilteredTotal: len(f.books)}, nil
}
func (f *fakeLibrary) Book(_ context.Context, id string) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.books {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, shared.ErrNotFound
}
func (f *fakeLibrary) AddBook(_ context.Context, in models.BookInput) (*models.Book, error) {
	return &models.Book{ID: "new", Title: in.Title}, nil
}
func (f *fakeLibrary) UpdateBook(_ context.Context, id string, in models.BookInput) (*models.Book, error) {
	return &models.Book{ID: id, Title: in.Title}, nil
}
func (f *fakeLibrary) UpdateStatus(_ context.Context, id string, st models.Status) (*models.Book, error) {
	return &models.Book{ID: id, Status: st}, nil
}
func (f *fakeLibrary) DeleteBook(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeLibrary) BulkDelete(context.Context, []string) error {
	return nil
}
func (f *fakeLibrary) Export(context.Context, models.FilterRequest) ([]byte, error) {
	return []byte("id,title\n"), nil
}
func (f *fakeLibrary) UploadCover(context.Context, string, io.Reader) (string, error) {
	return "https://covers.example.com/c.jpg", nil
}
func (f *fakeLibrary) ToggleWishlist(context.Context, string) (bool, error) {
	return true, nil
}
func (f *fakeLibrary) WishlistAdd(context.Context, []string) error {
	return nil
}
func (f *fakeLibrary) WishlistRemove(context.Context, []string) error {
	return nil
}
func (f *fakeLibrary) Wishlist(context.Context) ([]models.Book, error) {
	return nil, nil
}
func (f *fakeLibrary) Explore(context.Context, services.ExploreQuery) (*models.ExploreResult, error) {
	return &models.ExploreResult{}, nil
}
func (f *fakeLibrary) SearchCatalog(context.Context, string, int) ([]models.Volume, error) {
	return nil, nil
}
func (f *fakeLibrary) FillFromISBN(context.Context, string, *models.BookInput) error {
	return nil
}
func (f *fakeLibrary) Stats(context.Context) (*models.Stats, error) {
	return &models.Stats{}, nil
}
func (f *fakeLibrary) Users(context.Context) ([]models.User, error) {
	return nil, nil
}
func (f *fakeLibrary) SetRole(context.Context, string, models.Role) error {
	return nil
}

func (f *fakeLibrary) lastRequest() models.FilterRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type harness struct {
	model *Model
	lib   *fakeLibrary
	sess  *session.Session
	clock *tu.FakeClock
}

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// newHarness builds a model at start. A non-zero ttl signs in a student whose token expires after ttl.
func newHarness(t *testing.T, start string, ttl time.Duration) *harness {
	t.Helper()

	clock := tu.NewFakeClock(epoch)
	sess := session.New(session.Options{Clock: clock})
	if ttl != 0 {
		token := tu.MintToken(t, "u1", "ada", string(models.RoleStudent), epoch.Add(ttl))
		require.NoError(t, sess.Login(token, models.RoleStudent))
	}

	lib := &fakeLibrary{books: []models.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: models.StatusReading},
	}}
	cfg := shared.DefaultConfig()
	cfg.Listing.DebounceMS = 0

	loc, err := nav.ParseLocation(start)
	require.NoError(t, err)

	m := NewModel(context.Background(), Deps{
		Library:     lib,
		Session:     sess,
		Cache:       cache.New(lib, sess, nil),
		Config:      cfg,
		OpenBrowser: func(string) error { return nil },
	}, loc)
	t.Cleanup(m.Close)

	return &harness{model: m, lib: lib, sess: sess, clock: clock}
}

// settle routes until the location stops changing, following redirects.
func (h *harness) settle() tea.Cmd {
	var cmd tea.Cmd
	for range 5 {
		before := h.model.Location().Path
		cmd = h.model.route()
		if h.model.Location().Path == before && h.model.path == before {
			break
		}
	}
	return cmd
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRouting(t *testing.T) {
	t.Run("guest is redirected away from protected routes", func(t *testing.T) {
		h := newHarness(t, "/MyBooks?status=reading", 0)
		h.settle()

		assert.Equal(t, "/", h.model.Location().Path)
		assert.IsType(t, &landingScreen{}, h.model.screen)
	})

	t.Run("signed-in user skips guest pages", func(t *testing.T) {
		h := newHarness(t, "/login", time.Hour)
		h.settle()

		assert.Equal(t, "/home", h.model.Location().Path)
		assert.IsType(t, &homeScreen{}, h.model.screen)
	})

	t.Run("unknown paths fall back to landing", func(t *testing.T) {
		h := newHarness(t, "/nowhere", 0)
		h.settle()

		assert.Equal(t, "/", h.model.Location().Path)
	})

	t.Run("book details capture the id", func(t *testing.T) {
		h := newHarness(t, "/book-details/b1", time.Hour)
		h.settle()

		s, ok := h.model.screen.(*bookScreen)
		require.True(t, ok)
		assert.Equal(t, "b1", s.id)
	})

	t.Run("console shortcut requires admin", func(t *testing.T) {
		assert.Equal(t, "", shortcut("7", models.RoleStudent))
		assert.Equal(t, "/console", shortcut("7", models.RoleAdmin))
		assert.Equal(t, "/MyBooks", shortcut("2", models.RoleStudent))
	})
}

func TestSessionExpiry(t *testing.T) {
	h := newHarness(t, "/home", time.Minute)
	h.settle()
	require.Equal(t, "/home", h.model.Location().Path)

	h.clock.Advance(time.Minute)

	assert.Equal(t, "/login", h.model.Location().Path)
	assert.Equal(t, session.Unauthenticated, h.sess.Status().State)

	select {
	case msg := <-h.model.events:
		require.Equal(t, MsgNotice, msg.kind)
		n := msg.data.(notice)
		assert.Equal(t, session.ExpiredNotice.Title, n.title)
	default:
		t.Fatal("expected an expiry notice")
	}

	h.model.handleMsg(noticeMsg(NoticeInfo, session.ExpiredNotice.Title, session.ExpiredNotice.Text))
	assert.Contains(t, h.model.View(), "Session Expired")
}

func TestConfirm(t *testing.T) {
	yes := func() tea.Msg { return "confirmed" }

	t.Run("n dismisses", func(t *testing.T) {
		h := newHarness(t, "/home", time.Hour)
		h.settle()

		h.model.Update(confirmMsg("Delete this book?", yes))
		assert.Contains(t, h.model.View(), "Delete this book?")

		_, cmd := h.model.Update(keyPress("n"))
		assert.Nil(t, cmd)
		assert.Nil(t, h.model.confirm)
	})

	t.Run("y runs the action", func(t *testing.T) {
		h := newHarness(t, "/home", time.Hour)
		h.settle()

		h.model.Update(confirmMsg("Delete this book?", yes))
		_, cmd := h.model.Update(keyPress("y"))
		require.NotNil(t, cmd)
		assert.Equal(t, "confirmed", cmd())
		assert.Nil(t, h.model.confirm)
	})

	t.Run("other keys are swallowed", func(t *testing.T) {
		h := newHarness(t, "/home", time.Hour)
		h.settle()

		h.model.Update(confirmMsg("Log out of shelf?", yes))
		h.model.Update(keyPress("2"))
		assert.Equal(t, "/home", h.model.Location().Path)
		assert.NotNil(t, h.model.confirm)
	})
}

func TestLocationBar(t *testing.T) {
	h := newHarness(t, "/", 0)
	h.settle()

	bar := h.model.locationBar()
	assert.Contains(t, bar, "shelf")
	assert.Contains(t, bar, "guest")

	h = newHarness(t, "/home", time.Hour)
	h.settle()
	assert.Contains(t, h.model.locationBar(), "/home")
	assert.Contains(t, h.model.locationBar(), string(models.RoleStudent))
}

// pump delivers scoped screen messages until done reports true.
func pump(t *testing.T, h *harness, cmd tea.Cmd, done func() bool) {
	t.Helper()
	for i := 0; !done(); i++ {
		require.Less(t, i, 20, "screen never settled")
		require.NotNil(t, cmd)
		_, cmd = h.model.Update(cmd())
	}
}

func TestLibraryScreen(t *testing.T) {
	t.Run("hydrates filters from the location", func(t *testing.T) {
		h := newHarness(t, "/MyBooks?status=reading&sort=title_asc", time.Hour)
		cmd := h.settle()

		s, ok := h.model.screen.(*libraryScreen)
		require.True(t, ok)
		pump(t, h, cmd, func() bool { return s.snap.HasData })

		req := h.lib.lastRequest()
		assert.Equal(t, "reading", req.Status)
		assert.Equal(t, "title_asc", req.Sort)
		assert.Contains(t, h.model.View(), "Dune")
	})

	t.Run("status filter rewrites the query", func(t *testing.T) {
		h := newHarness(t, "/MyBooks", time.Hour)
		cmd := h.settle()
		s := h.model.screen.(*libraryScreen)
		pump(t, h, cmd, func() bool { return s.snap.HasData })

		h.model.Update(keyPress("s"))
		assert.Equal(t, "unread", h.model.Location().Query.Get("status"))
		assert.Equal(t, "/MyBooks", h.model.Location().Path)
	})

	t.Run("enter opens details with the list query", func(t *testing.T) {
		h := newHarness(t, "/MyBooks?genre=fiction", time.Hour)
		cmd := h.settle()
		s := h.model.screen.(*libraryScreen)
		pump(t, h, cmd, func() bool { return s.snap.HasData })

		h.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
		loc := h.model.Location()
		assert.Equal(t, "/book-details/b1", loc.Path)
		assert.Equal(t, "fiction", loc.Query.Get("genre"))
	})

	t.Run("delete asks first", func(t *testing.T) {
		h := newHarness(t, "/MyBooks", time.Hour)
		cmd := h.settle()
		s := h.model.screen.(*libraryScreen)
		pump(t, h, cmd, func() bool { return s.snap.HasData })

		_, cmd = h.model.Update(keyPress("d"))
		require.NotNil(t, cmd)
		h.model.Update(cmd())
		require.NotNil(t, h.model.confirm)
		assert.Contains(t, h.model.confirm.prompt, "Dune")
		assert.Empty(t, h.lib.deleted)

		_, cmd = h.model.Update(keyPress("y"))
		h.model.Update(cmd())
		assert.Equal(t, []string{"b1"}, h.lib.deleted)
	})
}

func TestStaleScreenReplies(t *testing.T) {
	h := newHarness(t, "/home", time.Hour)
	h.settle()

	stale := scopedMsg{scope: h.model.scopeID - 1, msg: noticeMsg(NoticeError, "late", "")}
	h.model.Update(stale)
	assert.Nil(t, h.model.notice)
	assert.False(t, strings.Contains(h.model.View(), "late"))
}
