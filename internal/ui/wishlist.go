package ui

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/nav"
)

// wishlistScreen lists the wishlist with the list's own fuzzy filter over title and author.
type wishlistScreen struct {
	base
	list     list.Model
	books    []models.Book
	selected map[string]bool
	loaded   bool
	err      error
}

// removedMsg reports wishlist entries removed on the server.
type removedMsg struct {
	ids []string
	err error
}

func newWishlistScreen(e *env, sc scope) *wishlistScreen {
	l := list.New(nil, list.NewDefaultDelegate(), max(e.width, 40), 18)
	l.Title = "Wishlist"
	l.Styles.Title = styles.bar
	l.SetShowHelp(false)
	l.SetStatusBarItemName("book", "books")
	l.DisableQuitKeybindings()

	return &wishlistScreen{base: newBase(e, sc), list: l, selected: map[string]bool{}}
}

func (s *wishlistScreen) init() tea.Cmd {
	return load(s.base, s.lib.Wishlist)
}

func (s *wishlistScreen) capturing() bool { return s.list.SettingFilter() }

func (s *wishlistScreen) refreshItems() tea.Cmd {
	items := make([]list.Item, len(s.books))
	for i, b := range s.books {
		items[i] = bookItem{book: b, selected: s.selected[b.ID]}
	}
	return s.list.SetItems(items)
}

func (s *wishlistScreen) current() (models.Book, bool) {
	it, ok := s.list.SelectedItem().(bookItem)
	return it.book, ok
}

func (s *wishlistScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[[]models.Book]:
		s.loaded = true
		if msg.err != nil {
			s.err = msg.err
			return failed("Could not load your wishlist", msg.err)
		}
		s.err = nil
		s.books = msg.data
		return s.refreshItems()
	case removedMsg:
		if msg.err != nil {
			if len(msg.ids) > 1 {
				return failed("Bulk remove failed", msg.err)
			}
			return failed("Failed to remove book", msg.err)
		}
		s.books = slices.DeleteFunc(s.books, func(b models.Book) bool { return slices.Contains(msg.ids, b.ID) })
		for _, id := range msg.ids {
			delete(s.selected, id)
		}
		text := "Removed from wishlist"
		if len(msg.ids) > 1 {
			text = fmt.Sprintf("%d books removed", len(msg.ids))
		}
		return tea.Batch(s.refreshItems(), succeeded(text))
	case tea.KeyMsg:
		if !s.list.SettingFilter() {
			if cmd, handled := s.handleKey(msg); handled {
				return cmd
			}
		}
	}

	var cmd tea.Cmd
	s.list, cmd = s.list.Update(msg)
	return cmd
}

func (s *wishlistScreen) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := s.keys
	switch {
	case key.Matches(msg, k.selectOne):
		if b, ok := s.current(); ok {
			if s.selected[b.ID] {
				delete(s.selected, b.ID)
			} else {
				s.selected[b.ID] = true
			}
			return s.refreshItems(), true
		}
	case key.Matches(msg, k.enter):
		if b, ok := s.current(); ok {
			s.history.Push(nav.Location{Path: "/book-details/" + b.ID, Query: s.history.Current().Query})
			return nil, true
		}
	case key.Matches(msg, k.remove):
		if b, ok := s.current(); ok {
			return s.remove([]string{b.ID}, func(ctx context.Context) error {
				_, err := s.lib.ToggleWishlist(ctx, b.ID)
				return err
			}), true
		}
	case key.Matches(msg, k.bulk):
		if len(s.selected) > 0 {
			ids := make([]string, 0, len(s.selected))
			for id := range s.selected {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			return confirm(fmt.Sprintf("Remove %d books from your wishlist?", len(ids)), s.remove(ids, func(ctx context.Context) error {
				return s.lib.WishlistRemove(ctx, ids)
			})), true
		}
	case key.Matches(msg, k.refresh):
		return load(s.base, s.lib.Wishlist), true
	}
	return nil, false
}

// remove runs fn, then refreshes the cached profile so wishlist marks elsewhere stay current.
func (s *wishlistScreen) remove(ids []string, fn func(ctx context.Context) error) tea.Cmd {
	return s.scope.do(func() tea.Msg {
		if err := fn(s.ctx); err != nil {
			return removedMsg{ids: ids, err: err}
		}
		if err := s.cache.FetchUser(s.ctx); err != nil {
			s.logger.Warn("profile refresh failed", "error", err)
		}
		return removedMsg{ids: ids}
	})
}

func (s *wishlistScreen) view() string {
	switch {
	case !s.loaded:
		return loadingLine("your wishlist")
	case s.err != nil && len(s.books) == 0:
		return inlineError(s.err)
	case len(s.books) == 0:
		return heading("Wishlist") + styles.muted.Render("Your wishlist is empty. Press 3 to discover books.")
	}

	out := s.list.View()
	if n := len(s.selected); n > 0 {
		out += fmt.Sprintf("\n%d selected", n)
	}
	return out
}

func (s *wishlistScreen) help() []key.Binding {
	k := s.keys
	return []key.Binding{
		key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		k.enter, k.selectOne,
		key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("x", "remove")),
		key.NewBinding(key.WithKeys("D", "X"), key.WithHelp("X", "remove selected")),
		k.refresh,
	}
}
