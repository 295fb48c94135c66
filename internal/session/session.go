package session

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/shared"
)

// Session combines the persisted token with the auth-change [Bus].
type Session struct {
	store  Store
	bus    *Bus
	clock  shared.Clock
	logger *log.Logger
}

// Options configures a [Session]. Nil fields get defaults.
type Options struct {
	Store  Store
	Bus    *Bus
	Clock  shared.Clock
	Logger *log.Logger
}

func New(opts Options) *Session {
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Bus == nil {
		opts.Bus = NewBus()
	}
	if opts.Clock == nil {
		opts.Clock = shared.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Session{store: opts.Store, bus: opts.Bus, clock: opts.Clock, logger: opts.Logger}
}

func (s *Session) Bus() *Bus {
	return s.bus
}
func (s *Session) Clock() shared.Clock {
	return s.clock
}

// Token returns the stored raw token, or "" when logged out.
func (s *Session) Token() (string, error) {
	token, _, err := s.store.Load()
	return token, err
}

// Role returns the stored role string.
func (s *Session) Role() (models.Role, error) {
	_, role, err := s.store.Load()
	return role, err
}

// Status inspects the stored token at the current time. A store failure is reported as Unauthenticated.
func (s *Session) Status() Status {
	token, err := s.Token()
	if err != nil {
		s.logger.Error("failed to read session", "error", err)
		return Status{State: Unauthenticated}
	}
	return Inspect(token, s.clock.Now())
}

// Login persists token and role, then publishes [EventLogin].
func (s *Session) Login(token string, role models.Role) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrAuthFailed)
	}
	if err := s.store.Save(token, role); err != nil {
		return err
	}
	s.bus.Publish(EventLogin)
	return nil
}

// Logout clears token and role, then publishes [EventLogout].
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.bus.Publish(EventLogout)
	return nil
}

// RequireActive returns the claims of an active session. An expired session is cleared first,
// mirroring what the [Monitor] does in the interactive client.
func (s *Session) RequireActive() (*Claims, error) {
	st := s.Status()
	switch st.State {
	case Active:
		return st.Claims, nil
	case Expired:
		if err := s.store.Clear(); err != nil {
			s.logger.Error("failed to clear expired session", "error", err)
		}
		s.bus.Publish(EventExpired)
		return nil, fmt.Errorf("%w: %w, please login again", shared.ErrNotAuthenticated, shared.ErrTokenExpired)
	default:
		return nil, fmt.Errorf("%w: run 'shelf auth login' first", shared.ErrNotAuthenticated)
	}
}
