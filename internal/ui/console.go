package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
)

// consoleScreen is the admin view of every account.
type consoleScreen struct {
	base
	users  []models.User
	err    error
	loaded bool
	cursor int
}

func newConsoleScreen(e *env, sc scope) *consoleScreen {
	return &consoleScreen{base: newBase(e, sc)}
}

func (s *consoleScreen) init() tea.Cmd {
	if !s.role().Can(models.PermViewConsole) {
		s.loaded = true
		return nil
	}
	return load(s.base, s.lib.Users)
}

// actorID is the signed-in account's id from the token claims.
func (s *consoleScreen) actorID() string {
	if c := s.sess.Status().Claims; c != nil {
		return c.UserID
	}
	return ""
}

// nextRole returns the role after target's current one that the actor may grant, or "" if none.
func (s *consoleScreen) nextRole(target models.User) models.Role {
	actor := s.role()
	options := actor.AssignableRoles()
	if len(options) == 0 {
		return ""
	}
	start := slices.Index(options, target.Role)
	for i := 1; i <= len(options); i++ {
		r := options[(start+i+len(options))%len(options)]
		if r != target.Role && actor.CanAssign(s.actorID(), target.ID, target.Role, r) {
			return r
		}
	}
	return ""
}

func (s *consoleScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[[]models.User]:
		s.loaded = true
		s.users, s.err = msg.data, msg.err
		s.cursor = clamp(s.cursor, len(s.users))
	case doneMsg:
		if msg.err == nil {
			return tea.Batch(report(msg), load(s.base, s.lib.Users))
		}
		return report(msg)
	case tea.KeyMsg:
		k := s.keys
		switch {
		case key.Matches(msg, k.up), key.Matches(msg, k.down):
			s.cursor = moveCursor(msg, k, s.cursor, len(s.users))
		case key.Matches(msg, k.role) && len(s.users) > 0:
			target := s.users[s.cursor]
			next := s.nextRole(target)
			if next == "" {
				return notify(NoticeError, "Not allowed", fmt.Sprintf("You cannot change the role of %s", target.Username))
			}
			return confirm(fmt.Sprintf("Change %s from %s to %s?", target.Username, target.Role, next),
				mutate(s.base, fmt.Sprintf("%s is now %s", target.Username, next), func(ctx context.Context) error {
					return s.lib.SetRole(ctx, target.ID, next)
				}))
		}
	}
	return nil
}

func (s *consoleScreen) view() string {
	var b strings.Builder
	b.WriteString(heading("Management Console"))
	switch {
	case !s.role().Can(models.PermViewConsole):
		b.WriteString(inlineError(fmt.Errorf("the console requires the admin role")))
		return b.String()
	case !s.loaded:
		return b.String() + loadingLine("accounts")
	case s.err != nil:
		return b.String() + inlineError(s.err)
	}

	me := s.actorID()
	for i, u := range s.users {
		name := u.Username
		if u.ID == me {
			name += styles.muted.Render(" (you)")
		}
		fmt.Fprintf(&b, "%s %-24s %-32s %s\n", pointer(i == s.cursor), name, styles.muted.Render(truncate(u.Email, 32)), roleBadge(u.Role))
	}
	return b.String()
}

func roleBadge(r models.Role) string {
	switch r {
	case models.RoleSuperAdmin:
		return styles.err.Render(string(r))
	case models.RoleAdmin:
		return styles.warn.Render(string(r))
	default:
		return styles.muted.Render(string(r))
	}
}

func (s *consoleScreen) help() []key.Binding {
	return []key.Binding{s.keys.up, s.keys.down, s.keys.role}
}
