package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/cache"
	"github.com/desertthunder/shelf/internal/listing"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/nav"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
)

// screen is one routed view. Methods run on the bubbletea goroutine only.
type screen interface {
	init() tea.Cmd
	update(msg tea.Msg) tea.Cmd
	view() string
	help() []key.Binding
	// capturing reports whether keys go to a text input, which disables global shortcuts.
	capturing() bool
	close()
}

// env is what every screen shares.
type env struct {
	ctx     context.Context
	lib     services.Library
	sess    *session.Session
	cache   *cache.Cache
	history *nav.History
	cfg     *shared.Config
	logger  *log.Logger
	keys    keyMap
	open    func(string) error
	width   int
}

func (e *env) navigate(path string) { e.history.Navigate(path) }

func (e *env) now() time.Time { return e.sess.Clock().Now() }

// role returns the stored role, or "" when it cannot be read.
func (e *env) role() models.Role {
	r, err := e.sess.Role()
	if err != nil {
		return ""
	}
	return r
}

// base is embedded by screens for the shared env, the scope and a cancel func tied to the screen's life.
type base struct {
	*env
	scope  scope
	ctx    context.Context
	cancel context.CancelFunc
}

func newBase(e *env, sc scope) base {
	ctx, cancel := context.WithCancel(e.ctx)
	return base{env: e, scope: sc, ctx: ctx, cancel: cancel}
}

func (b base) capturing() bool { return false }
func (b base) close()          { b.cancel() }

// load runs fn and delivers its result as a [loadedMsg].
func load[T any](b base, fn func(ctx context.Context) (T, error)) tea.Cmd {
	return b.scope.do(func() tea.Msg {
		data, err := fn(b.ctx)
		return loadedMsg[T]{data: data, err: err}
	})
}

// mutate runs fn and delivers a [doneMsg].
func mutate(b base, action string, fn func(ctx context.Context) error) tea.Cmd {
	return b.scope.do(func() tea.Msg {
		return doneMsg{action: action, err: fn(b.ctx)}
	})
}

// report turns a doneMsg into the matching notice.
func report(msg doneMsg) tea.Cmd {
	if msg.err != nil {
		return failed(msg.action+" failed", msg.err)
	}
	return succeeded(msg.action)
}

// waitSnapshot delivers the next synchronizer update until the screen closes.
func waitSnapshot[R any](b base, s *listing.Synchronizer[R]) tea.Cmd {
	return b.scope.do(func() tea.Msg {
		select {
		case snap := <-s.Updates():
			return snapshotMsg[R]{snap: snap}
		case <-b.ctx.Done():
			return nil
		}
	})
}

// cycle returns the option after cur, wrapping around.
func cycle(options []string, cur string) string {
	i := slices.Index(options, cur)
	return options[(i+1)%len(options)]
}

// clamp keeps a cursor within [0, n).
func clamp(cursor, n int) int {
	switch {
	case n == 0:
		return 0
	case cursor < 0:
		return 0
	case cursor >= n:
		return n - 1
	}
	return cursor
}

func moveCursor(msg tea.KeyMsg, k keyMap, cursor, n int) int {
	switch {
	case key.Matches(msg, k.up):
		return clamp(cursor-1, n)
	case key.Matches(msg, k.down):
		return clamp(cursor+1, n)
	}
	return cursor
}

func heading(text string) string { return styles.title.Render(text) }

func inlineError(err error) string {
	return styles.err.Render(fmt.Sprintf("! %v", err))
}

func loadingLine(what string) string { return styles.muted.Render("Loading " + what + "...") }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func pointer(on bool) string {
	if on {
		return styles.cursor.Render("›")
	}
	return " "
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Option lists shown by the cycling filters.
var (
	libraryGenres   = []string{"all", "fiction", "sci-fi", "biography"}
	libraryStatuses = []string{"all", string(models.StatusUnread), string(models.StatusReading), string(models.StatusCompleted)}
	librarySorts    = []string{listing.SortCreatedDesc, listing.SortTitleAsc}
	exploreGenres   = []string{models.GenreAll, "Fiction", "History", "Science", "Mystery", "Fantasy"}
	exploreTabs     = []string{"Best Sellers", "Community", "New Releases"}
)
