package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
)

type homeScreen struct {
	base
	form *bookForm
}

func newHomeScreen(e *env, sc scope) *homeScreen { return &homeScreen{base: newBase(e, sc)} }

func (s *homeScreen) init() tea.Cmd { return nil }

func (s *homeScreen) capturing() bool { return s.form != nil }

func (s *homeScreen) update(msg tea.Msg) tea.Cmd {
	if s.form != nil {
		cmd, done := s.form.update(msg)
		if done {
			s.form = nil
		}
		return cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, s.keys.add) {
		s.form = newBookForm(s.base, nil)
		return nil
	}
	return nil
}

// greeting prefers the cached profile and falls back to the token's username claim.
func (s *homeScreen) greeting() string {
	if u := s.cache.User(); u != nil && u.Username != "" {
		return u.Username
	}
	if st := s.sess.Status(); st.Claims != nil && st.Claims.Username != "" {
		return st.Claims.Username
	}
	return "Reader"
}

func (s *homeScreen) view() string {
	if s.form != nil {
		return s.form.view()
	}

	var b strings.Builder
	b.WriteString(styles.muted.Render("GREETINGS, "+strings.ToUpper(s.greeting())) + "\n")
	b.WriteString(heading("The Sanctuary of Thought."))

	loadingUser, loadingLibrary := s.cache.Loading()
	switch {
	case loadingUser || loadingLibrary:
		b.WriteString(loadingLine("your shelf") + "\n\n")
	default:
		fmt.Fprintf(&b, "%d books in your library, %d on your wishlist\n\n", len(s.cache.LibraryIDs()), len(s.cache.WishlistIDs()))
	}

	entries := [][2]string{
		{"2", "The Archives: your whole library"},
		{"3", "Discover: best sellers, new releases and the community"},
		{"4", "Wishlist"},
		{"5", "Insights: reading velocity and genres"},
		{"6", "Profile"},
	}
	if s.role().Can(models.PermViewConsole) {
		entries = append(entries, [2]string{"7", "Management console"})
	}
	entries = append(entries, [2]string{"a", "Log a new book"})
	for _, e := range entries {
		fmt.Fprintf(&b, "  %s  %s\n", styles.cursor.Render(e[0]), e[1])
	}
	return b.String()
}

func (s *homeScreen) help() []key.Binding {
	if s.form != nil {
		return s.form.help()
	}
	return []key.Binding{s.keys.add}
}
