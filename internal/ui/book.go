package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/nav"
)

const descPreview = 280

// bookScreen shows one library record.
type bookScreen struct {
	base
	id       string
	from     nav.Location
	book     *models.Book
	err      error
	form     *bookForm
	expanded bool
}

// statusMsg is the result of a quick status change.
type statusMsg struct {
	book *models.Book
	err  error
}

// deletedMsg reports the record was removed.
type deletedMsg struct{ err error }

func newBookScreen(e *env, sc scope, id string, loc nav.Location) *bookScreen {
	return &bookScreen{base: newBase(e, sc), id: id, from: loc}
}

func (s *bookScreen) fetch() tea.Cmd {
	id := s.id
	return load(s.base, func(ctx context.Context) (*models.Book, error) { return s.lib.Book(ctx, id) })
}

func (s *bookScreen) init() tea.Cmd { return s.fetch() }

func (s *bookScreen) capturing() bool { return s.form != nil }

func (s *bookScreen) update(msg tea.Msg) tea.Cmd {
	if s.form != nil {
		if saved, ok := msg.(savedMsg); ok && saved.err == nil && saved.book != nil {
			s.book = saved.book
		}
		cmd, done := s.form.update(msg)
		if done {
			s.form = nil
		}
		return cmd
	}

	switch msg := msg.(type) {
	case loadedMsg[*models.Book]:
		s.book, s.err = msg.data, msg.err
		return nil
	case statusMsg:
		if msg.err != nil {
			return failed("Failed to update status", msg.err)
		}
		s.book = msg.book
		return notify(NoticeSuccess, "Status: "+string(msg.book.Status), msg.book.Title)
	case deletedMsg:
		if msg.err != nil {
			return failed("Server rejection on delete request", msg.err)
		}
		s.history.Push(nav.Location{Path: "/MyBooks", Query: s.from.Query})
		return notify(NoticeSuccess, "Deleted", "Book removed from archives.")
	case doneMsg:
		return report(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return nil
}

func (s *bookScreen) setStatus(st models.Status) tea.Cmd {
	id := s.book.ID
	return s.scope.do(func() tea.Msg {
		b, err := s.lib.UpdateStatus(s.ctx, id, st)
		return statusMsg{book: b, err: err}
	})
}

func (s *bookScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.book == nil {
		if key.Matches(msg, s.keys.refresh) {
			return s.fetch()
		}
		return nil
	}

	k := s.keys
	b := *s.book
	switch {
	case key.Matches(msg, k.status):
		i := slices.Index(models.Statuses, b.Status)
		return s.setStatus(models.Statuses[(i+1)%len(models.Statuses)])
	case msg.String() == "c" && b.Status != models.StatusCompleted:
		return s.setStatus(models.StatusCompleted)
	case key.Matches(msg, k.edit):
		s.form = newBookForm(s.base, &b)
	case key.Matches(msg, k.enter):
		s.expanded = !s.expanded
	case key.Matches(msg, k.wishlist):
		return mutate(s.base, "Wishlist updated", func(ctx context.Context) error {
			if _, err := s.lib.ToggleWishlist(ctx, b.ID); err != nil {
				return err
			}
			return s.cache.FetchUser(ctx)
		})
	case key.Matches(msg, k.remove):
		return confirm(fmt.Sprintf("Are you sure you want to remove %q from your library?", b.Title), s.scope.do(func() tea.Msg {
			err := s.lib.DeleteBook(s.ctx, b.ID)
			if err == nil {
				if ferr := s.cache.FetchLibraryIDs(s.ctx); ferr != nil {
					s.logger.Warn("library ids refresh failed", "error", ferr)
				}
			}
			return deletedMsg{err: err}
		}))
	case key.Matches(msg, k.open) && b.CoverURL != "":
		if err := s.open(b.CoverURL); err != nil {
			return failed("Could not open browser", err)
		}
	}
	return nil
}

func (s *bookScreen) view() string {
	if s.form != nil {
		return s.form.view()
	}
	switch {
	case s.err != nil:
		return heading("Record Not Found") + inlineError(s.err) + "\n" + styles.muted.Render("r to retry, esc to go back")
	case s.book == nil:
		return loadingLine("book")
	}

	b := s.book
	var out strings.Builder
	out.WriteString(heading(b.Title))
	fmt.Fprintf(&out, "by %s\n\n", b.Author)

	rows := [][2]string{
		{"Status", statusIcon(b.Status) + " " + title(string(b.Status))},
		{"Genre", b.Genre},
		{"Year", string(b.Year)},
		{"Tags", strings.Join(b.Tags, ", ")},
	}
	if b.Progress > 0 {
		rows = append(rows, [2]string{"Progress", fmt.Sprintf("%d%%", b.Progress)})
	}
	if wishlisted(s.env, *b) {
		rows = append(rows, [2]string{"Wishlist", styles.err.Render("♥")})
	}
	if !b.CreatedAt.IsZero() {
		rows = append(rows, [2]string{"Added", b.CreatedAt.Format("Jan 2, 2006")})
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(&out, "%s %s\n", styles.muted.Width(10).Render(r[0]), r[1])
	}

	if b.Description != "" {
		desc := b.Description
		if !s.expanded && len([]rune(desc)) > descPreview {
			desc = truncate(desc, descPreview) + styles.muted.Render(" (enter to read more)")
		}
		out.WriteString("\n" + lipgloss.NewStyle().Width(min(max(s.width-4, 40), 80)).Render(desc) + "\n")
	}
	return out.String()
}

func (s *bookScreen) help() []key.Binding {
	if s.form != nil {
		return s.form.help()
	}
	k := s.keys
	return []key.Binding{
		k.status,
		key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "mark finished")),
		k.edit, k.wishlist, k.remove, k.open,
	}
}
