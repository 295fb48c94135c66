package ui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/models"
)

type landingScreen struct{ base }

func newLandingScreen(e *env, sc scope) *landingScreen { return &landingScreen{newBase(e, sc)} }

func (s *landingScreen) init() tea.Cmd { return nil }

func (s *landingScreen) update(msg tea.Msg) tea.Cmd {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "l", "enter":
			s.navigate("/login")
		case "s":
			s.navigate("/signup")
		}
	}
	return nil
}

func (s *landingScreen) view() string {
	return heading("Your reading life, organized.") +
		"\nTrack what you read, discover what is next and keep a wishlist.\n\n" +
		"  l  log in\n" +
		"  s  create an account\n"
}

func (s *landingScreen) help() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "login")),
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "signup")),
	}
}

type loginScreen struct {
	base
	form    *form
	pending bool
}

func newLoginScreen(e *env, sc scope) *loginScreen {
	return &loginScreen{
		base: newBase(e, sc),
		form: newForm(
			field{label: "Email", placeholder: "you@example.com"},
			field{label: "Password", secret: true},
		),
	}
}

func (s *loginScreen) init() tea.Cmd { return textinput.Blink }

func (s *loginScreen) capturing() bool { return true }

func (s *loginScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg[*models.AuthResult]:
		s.pending = false
		if msg.err != nil {
			return failed("Login failed", msg.err)
		}
		if err := s.sess.Login(msg.data.Token, msg.data.Role); err != nil {
			return failed("Login failed", err)
		}
		s.navigate(s.cfg.Session.HomePath)
		return succeeded("Welcome back")
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			s.history.Back()
			return nil
		case "enter":
			return s.submit()
		}
	}
	return s.form.update(msg)
}

func (s *loginScreen) submit() tea.Cmd {
	if s.pending {
		return nil
	}
	creds := models.Credentials{Email: s.form.value(0), Password: s.form.inputs[1].Value()}
	if creds.Email == "" || creds.Password == "" {
		return failed("Login failed", errors.New("email and password are required"))
	}

	s.pending = true
	return load(s.base, func(ctx context.Context) (*models.AuthResult, error) {
		return s.lib.Login(ctx, creds)
	})
}

func (s *loginScreen) view() string {
	out := heading("Log in") + s.form.view()
	if s.pending {
		out += "\n" + loadingLine("session")
	}
	return out
}

func (s *loginScreen) help() []key.Binding {
	return []key.Binding{s.keys.tab, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "login"))}
}

type signupScreen struct {
	base
	form    *form
	pending bool
}

func newSignupScreen(e *env, sc scope) *signupScreen {
	return &signupScreen{
		base: newBase(e, sc),
		form: newForm(
			field{label: "Username"},
			field{label: "Email", placeholder: "you@example.com"},
			field{label: "Password", secret: true},
		),
	}
}

func (s *signupScreen) init() tea.Cmd { return textinput.Blink }

func (s *signupScreen) capturing() bool { return true }

func (s *signupScreen) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case doneMsg:
		s.pending = false
		if msg.err != nil {
			return report(msg)
		}
		s.navigate(s.cfg.Session.LoginPath)
		return succeeded("Account created, please log in")
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			s.history.Back()
			return nil
		case "enter":
			return s.submit()
		}
	}
	return s.form.update(msg)
}

func (s *signupScreen) submit() tea.Cmd {
	if s.pending {
		return nil
	}
	reg := models.Registration{
		Username: s.form.value(0),
		Email:    s.form.value(1),
		Password: s.form.inputs[2].Value(),
		Role:     models.RoleStudent,
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return failed("Signup failed", errors.New("username, email and password are required"))
	}

	s.pending = true
	return mutate(s.base, "Signup", func(ctx context.Context) error {
		return s.lib.Signup(ctx, reg)
	})
}

func (s *signupScreen) view() string {
	return heading("Create an account") + s.form.view()
}

func (s *signupScreen) help() []key.Binding {
	return []key.Binding{s.keys.tab, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign up"))}
}
