package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/shelf/internal/formatter"
	"github.com/desertthunder/shelf/internal/listing"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/nav"
)

type libraryInput int

const (
	inputNone libraryInput = iota
	inputSearch
	inputTags
)

// libraryScreen is the paged personal library.
type libraryScreen struct {
	base
	sync     *listing.Synchronizer[*models.FilterResult]
	snap     listing.Snapshot[*models.FilterResult]
	start    nav.Location
	input    libraryInput
	search   textinput.Model
	tags     textinput.Model
	cursor   int
	selected map[string]bool
	form     *bookForm
}

func newLibraryScreen(e *env, sc scope, loc nav.Location) *libraryScreen {
	s := &libraryScreen{
		base:     newBase(e, sc),
		start:    loc,
		search:   textinput.New(),
		tags:     textinput.New(),
		selected: map[string]bool{},
	}
	s.search.Prompt = "/ "
	s.search.Placeholder = "search title or author"
	s.tags.Prompt = "# "
	s.tags.Placeholder = "comma separated tags"

	s.sync = listing.New(listing.Options[*models.FilterResult]{
		Config: listing.LibraryConfig(e.cfg.Listing.Debounce(), e.cfg.Listing.PageSize),
		Fetch: func(ctx context.Context, f listing.Filters) (*models.FilterResult, error) {
			return e.lib.FilterBooks(ctx, f.Request())
		},
		URL:     e.history,
		Clock:   e.sess.Clock(),
		Logger:  e.logger,
		Context: s.ctx,
	})
	return s
}

func (s *libraryScreen) init() tea.Cmd {
	if err := s.sync.Hydrate(s.start.Query); err != nil {
		return failed("Library unavailable", err)
	}
	s.search.SetValue(s.sync.Snapshot().Draft)
	return waitSnapshot(s.base, s.sync)
}

func (s *libraryScreen) close() {
	s.base.close()
	s.sync.Close()
}

func (s *libraryScreen) capturing() bool { return s.input != inputNone || s.form != nil }

func (s *libraryScreen) books() []models.Book {
	if !s.snap.HasData || s.snap.Data == nil {
		return nil
	}
	return s.snap.Data.Books
}

func (s *libraryScreen) current() (models.Book, bool) {
	books := s.books()
	if len(books) == 0 {
		return models.Book{}, false
	}
	return books[clamp(s.cursor, len(books))], true
}

func (s *libraryScreen) update(msg tea.Msg) tea.Cmd {
	if s.form != nil {
		cmd, done := s.form.update(msg)
		if done {
			s.form = nil
			s.sync.Refresh()
		}
		return cmd
	}

	switch msg := msg.(type) {
	case snapshotMsg[*models.FilterResult]:
		s.snap = msg.snap
		s.cursor = clamp(s.cursor, len(s.books()))
		return waitSnapshot(s.base, s.sync)
	case doneMsg:
		if msg.err == nil {
			s.selected = map[string]bool{}
			s.sync.Refresh()
		}
		return report(msg)
	case tea.KeyMsg:
		if s.input != inputNone {
			return s.updateInput(msg)
		}
		return s.handleKey(msg)
	}

	if s.input != inputNone {
		return s.updateInput(msg)
	}
	return nil
}

func (s *libraryScreen) updateInput(msg tea.Msg) tea.Cmd {
	in := &s.search
	if s.input == inputTags {
		in = &s.tags
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			s.input = inputNone
			in.Blur()
			if in == &s.tags {
				s.sync.SetTags(splitTags(s.tags.Value()))
				return nil
			}
			s.sync.CommitSearch()
			return nil
		case "esc":
			s.input = inputNone
			in.Blur()
			return nil
		}
	}

	var cmd tea.Cmd
	before := in.Value()
	*in, cmd = in.Update(msg)
	if in == &s.search && in.Value() != before {
		s.sync.Type(in.Value())
	}
	return cmd
}

func (s *libraryScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	k := s.keys
	f := s.snap.Filters
	books := s.books()

	switch {
	case key.Matches(msg, k.up), key.Matches(msg, k.down):
		s.cursor = moveCursor(msg, k, s.cursor, len(books))
	case key.Matches(msg, k.search):
		s.input = inputSearch
		return s.search.Focus()
	case key.Matches(msg, k.tags):
		s.input = inputTags
		s.tags.SetValue(strings.Join(f.Tags, ", "))
		return s.tags.Focus()
	case key.Matches(msg, k.status):
		s.sync.SetStatus(cycle(libraryStatuses, f.Status))
	case key.Matches(msg, k.genre):
		s.sync.SetGenre(cycle(libraryGenres, f.Genre))
	case key.Matches(msg, k.sort):
		s.sync.SetSort(cycle(librarySorts, f.Sort))
	case key.Matches(msg, k.view):
		s.sync.SetView(cycle([]string{listing.ViewGrid, listing.ViewList}, f.View))
	case key.Matches(msg, k.next):
		if s.snap.HasData && f.Page < s.snap.Data.TotalPages {
			s.sync.SetPage(f.Page + 1)
		}
	case key.Matches(msg, k.prev):
		if f.Page > 1 {
			s.sync.SetPage(f.Page - 1)
		}
	case key.Matches(msg, k.refresh):
		s.sync.Refresh()
	case key.Matches(msg, k.add):
		s.form = newBookForm(s.base, nil)
	case key.Matches(msg, k.selectOne):
		if b, ok := s.current(); ok {
			s.selected[b.ID] = !s.selected[b.ID]
			if !s.selected[b.ID] {
				delete(s.selected, b.ID)
			}
		}
	case key.Matches(msg, k.enter):
		if b, ok := s.current(); ok {
			loc := nav.Location{Path: "/book-details/" + b.ID, Query: s.snap.Query}
			s.history.Push(loc)
		}
	case key.Matches(msg, k.edit):
		if b, ok := s.current(); ok {
			s.form = newBookForm(s.base, &b)
		}
	case key.Matches(msg, k.remove):
		if b, ok := s.current(); ok {
			return confirm(fmt.Sprintf("Permanently remove %q?", b.Title), mutate(s.base, "Book deleted", func(ctx context.Context) error {
				return s.lib.DeleteBook(ctx, b.ID)
			}))
		}
	case key.Matches(msg, k.bulk):
		if ids := s.selectedIDs(); len(ids) > 0 {
			return confirm(fmt.Sprintf("Delete %d books? This action cannot be undone!", len(ids)), mutate(s.base, fmt.Sprintf("%d books deleted", len(ids)), func(ctx context.Context) error {
				return s.lib.BulkDelete(ctx, ids)
			}))
		}
	case key.Matches(msg, k.wishlist):
		if b, ok := s.current(); ok {
			return s.toggleWishlist(b)
		}
	case key.Matches(msg, k.bulkWish):
		if ids := s.selectedIDs(); len(ids) > 0 {
			return mutate(s.base, fmt.Sprintf("%d books added to wishlist", len(ids)), func(ctx context.Context) error {
				if err := s.lib.WishlistAdd(ctx, ids); err != nil {
					return err
				}
				return s.cache.FetchUser(ctx)
			})
		}
	case key.Matches(msg, k.export):
		return s.export()
	}
	return nil
}

func (s *libraryScreen) selectedIDs() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *libraryScreen) toggleWishlist(b models.Book) tea.Cmd {
	return s.scope.do(func() tea.Msg {
		added, err := s.lib.ToggleWishlist(s.ctx, b.ID)
		if err != nil {
			return noticeMsg(NoticeError, "Wishlist update failed", err.Error())
		}
		if err := s.cache.FetchUser(s.ctx); err != nil {
			s.logger.Warn("profile refresh failed", "error", err)
		}
		if added {
			return noticeMsg(NoticeSuccess, "Added to Wishlist", b.Title)
		}
		return noticeMsg(NoticeSuccess, "Removed from Wishlist", b.Title)
	})
}

// export saves the server-side CSV of the current filters into the working directory.
func (s *libraryScreen) export() tea.Cmd {
	req := s.snap.Filters.Request()
	return s.scope.do(func() tea.Msg {
		data, err := s.lib.Export(s.ctx, req)
		if err != nil {
			return noticeMsg(NoticeError, "Export failed", err.Error())
		}
		path, err := formatter.WriteServerExport(data, "", s.now())
		if err != nil {
			return noticeMsg(NoticeError, "Export failed", err.Error())
		}
		return noticeMsg(NoticeSuccess, "Download Started", path)
	})
}

// wishlisted matches a library book against the cached profile's wishlist by either id.
func wishlisted(e *env, b models.Book) bool {
	if b.GoogleID != "" && e.cache.InWishlist(b.GoogleID) {
		return true
	}
	if u := e.cache.User(); u != nil {
		for _, w := range u.Wishlist {
			if w.ID == b.ID {
				return true
			}
		}
	}
	return false
}

func statusIcon(st models.Status) string {
	switch st {
	case models.StatusCompleted:
		return styles.ok.Render("✓")
	case models.StatusReading:
		return styles.warn.Render("◐")
	default:
		return styles.muted.Render("○")
	}
}

func (s *libraryScreen) view() string {
	if s.form != nil {
		return s.form.view()
	}

	f := s.snap.Filters
	var b strings.Builder
	b.WriteString(heading("The Archives"))

	if s.snap.HasData {
		st := s.snap.Data.Stats
		fmt.Fprintf(&b, "%d of %d books  •  unread %d  reading %d  completed %d\n",
			s.snap.Data.FilteredTotal, s.snap.Data.OverallTotal, st.Unread, st.Reading, st.Completed)
	}
	fmt.Fprintf(&b, "%s  genre:%s  status:%s  sort:%s  tags:%s  view:%s\n",
		s.searchLine(), f.Genre, f.Status, f.Sort, strings.Join(f.Tags, ","), f.View)
	if s.input == inputTags {
		b.WriteString(s.tags.View() + "\n")
	}
	b.WriteString("\n")

	if s.snap.Err != nil {
		b.WriteString(inlineError(fmt.Errorf("failed to fetch library data: %w", s.snap.Err)) + "\n")
	}
	if s.snap.Loading() {
		b.WriteString(loadingLine("books") + "\n")
	}

	books := s.books()
	switch {
	case len(books) == 0 && s.snap.HasData:
		b.WriteString(styles.muted.Render("No books match these filters.") + "\n")
	case f.View == listing.ViewList:
		b.WriteString(s.listView(books))
	default:
		b.WriteString(s.gridView(books))
	}

	if s.snap.HasData {
		fmt.Fprintf(&b, "\npage %d of %d", f.Page, max(s.snap.Data.TotalPages, 1))
		if n := len(s.selected); n > 0 {
			fmt.Fprintf(&b, "  •  %d selected", n)
		}
	}
	return b.String()
}

func (s *libraryScreen) searchLine() string {
	if s.input == inputSearch {
		return s.search.View()
	}
	if q := s.snap.Filters.Query; q != "" {
		return fmt.Sprintf("search:%q", q)
	}
	return styles.muted.Render("/ to search")
}

func (s *libraryScreen) row(i int, bk models.Book) string {
	heart := " "
	if wishlisted(s.env, bk) {
		heart = styles.err.Render("♥")
	}
	return fmt.Sprintf("%s %s %s %s", check(s.selected[bk.ID]), statusIcon(bk.Status), heart, truncate(bk.Title, 40))
}

func (s *libraryScreen) listView(books []models.Book) string {
	var b strings.Builder
	for i, bk := range books {
		fmt.Fprintf(&b, "%s %s  %s  %s\n", pointer(i == s.cursor), s.row(i, bk),
			styles.muted.Render(truncate(bk.Author, 24)), styles.muted.Render(bk.Genre))
	}
	return b.String()
}

func (s *libraryScreen) gridView(books []models.Book) string {
	perRow := max((s.width-2)/34, 1)
	var rows []string
	var cards []string
	for i, bk := range books {
		style := styles.card
		if i == s.cursor {
			style = styles.selected
		}
		body := s.row(i, bk) + "\n" + styles.muted.Render(truncate(bk.Author, 26))
		if bk.Genre != "" {
			body += "\n" + styles.muted.Render(bk.Genre)
		}
		cards = append(cards, style.Render(body))
		if len(cards) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
			cards = nil
		}
	}
	if len(cards) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (s *libraryScreen) help() []key.Binding {
	if s.form != nil {
		return s.form.help()
	}
	if s.input != inputNone {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		}
	}
	k := s.keys
	return []key.Binding{k.search, k.status, k.genre, k.sort, k.view, k.prev, k.next, k.add, k.selectOne, k.remove, k.bulk, k.wishlist, k.export}
}
