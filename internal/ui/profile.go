package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
)

type profileScreen struct {
	base
	form *form
	busy bool
}

// profileMsg is the result of a profile update.
type profileMsg struct {
	user *models.User
	err  error
}

func newProfileScreen(e *env, sc scope) *profileScreen { return &profileScreen{base: newBase(e, sc)} }

func (s *profileScreen) init() tea.Cmd {
	if s.cache.User() != nil {
		return nil
	}
	return mutate(s.base, "Profile loaded", s.cache.FetchUser)
}

func (s *profileScreen) capturing() bool { return s.form != nil }

func (s *profileScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.err != nil {
			return report(msg)
		}
		return nil
	case profileMsg:
		s.busy = false
		if msg.err != nil {
			return failed("Update failed", msg.err)
		}
		s.cache.SetUser(msg.user)
		s.form = nil
		return notify(NoticeSuccess, "Identity Updated", msg.user.Username)
	case tea.KeyMsg:
		if s.form != nil {
			return s.updateForm(msg)
		}
		if key.Matches(msg, s.keys.edit) {
			if u := s.cache.User(); u != nil {
				s.form = newForm(
					field{label: "Username", value: u.Username},
					field{label: "Email", value: u.Email},
				)
			}
		}
		return nil
	}
	if s.form != nil {
		return s.form.update(msg)
	}
	return nil
}

func (s *profileScreen) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.form = nil
		return nil
	case "enter":
		if s.busy {
			return nil
		}
		u := s.cache.User()
		if u == nil {
			return nil
		}
		update := models.ProfileUpdate{Username: s.form.value(0), Email: s.form.value(1), Role: u.Role}
		if update.Username == "" || update.Email == "" {
			return notify(NoticeError, "Update failed", "username and email are required")
		}
		s.busy = true
		return s.scope.do(func() tea.Msg {
			user, err := s.lib.UpdateProfile(s.ctx, update)
			return profileMsg{user: user, err: err}
		})
	}
	return s.form.update(msg)
}

func (s *profileScreen) view() string {
	var b strings.Builder
	b.WriteString(heading("Profile"))

	u := s.cache.User()
	if u == nil {
		if loading, _ := s.cache.Loading(); loading {
			return b.String() + loadingLine("profile")
		}
		return b.String() + styles.muted.Render("Profile unavailable.")
	}

	if s.form != nil {
		b.WriteString(s.form.view())
		if s.busy {
			b.WriteString("\n" + loadingLine("changes"))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s\n", styles.muted.Width(12).Render("Username"), u.Username)
	fmt.Fprintf(&b, "%s %s\n", styles.muted.Width(12).Render("Email"), u.Email)
	fmt.Fprintf(&b, "%s %s\n", styles.muted.Width(12).Render("Permissions"), title(string(u.Role)))
	fmt.Fprintf(&b, "%s %d books\n", styles.muted.Width(12).Render("Wishlist"), len(u.Wishlist))
	fmt.Fprintf(&b, "%s %d books\n", styles.muted.Width(12).Render("Library"), len(s.cache.LibraryIDs()))
	return b.String()
}

func (s *profileScreen) help() []key.Binding {
	if s.form != nil {
		return []key.Binding{
			s.keys.tab,
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		}
	}
	return []key.Binding{s.keys.edit, s.keys.logout}
}
