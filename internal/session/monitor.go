package session

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/shared"
)

// Navigator is the location the monitor watches and redirects.
type Navigator interface {
	Path() string
	Navigate(path string)
}

// Notice is a user-visible message raised by the monitor.
type Notice struct {
	Title string
	Text  string
}

// ExpiredNotice is shown when the session ends because the token expired.
var ExpiredNotice = Notice{Title: "Session Expired", Text: "Please login again"}

// MonitorOptions configures a [Monitor].
type MonitorOptions struct {
	Session     *Session
	Navigator   Navigator
	Notify      func(Notice)
	LandingPath string
	LoginPath   string
	PublicPaths []string
	Logger      *log.Logger
}

// Monitor enforces that the session ends the instant its token expires.
type Monitor struct {
	session   *Session
	nav       Navigator
	notify    func(Notice)
	landing   string
	login     string
	public    []string
	logger    *log.Logger
	clock     shared.Clock
	mu        sync.Mutex
	gen       uint64
	stopTimer func() bool
}

func NewMonitor(opts MonitorOptions) *Monitor {
	if opts.LandingPath == "" {
		opts.LandingPath = "/"
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.PublicPaths == nil {
		opts.PublicPaths = []string{"/login", "/signup"}
	}
	if opts.Notify == nil {
		opts.Notify = func(Notice) {}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Monitor{
		session: opts.Session,
		nav:     opts.Navigator,
		notify:  opts.Notify,
		landing: opts.LandingPath,
		login:   opts.LoginPath,
		public:  opts.PublicPaths,
		logger:  opts.Logger,
		clock:   opts.Session.Clock(),
	}
}

// Check re-evaluates the stored token against the current path. Call it on start and after every path change.
func (m *Monitor) Check() Status {
	gen := m.reset()
	st := m.session.Status()

	switch st.State {
	case Unauthenticated:
		if path := m.nav.Path(); !slices.Contains(m.public, path) && path != m.landing {
			m.nav.Navigate(m.landing)
		}
	case Expired:
		m.expire(gen)
	case Active:
		m.mu.Lock()
		if gen == m.gen {
			m.stopTimer = m.clock.AfterFunc(st.TTL, func() { m.expire(gen) })
		}
		m.mu.Unlock()
		m.logger.Debug("session timer armed", "ttl", st.TTL)
	}

	return st
}

// Stop cancels any pending expiry timer and invalidates in-flight checks.
func (m *Monitor) Stop() {
	m.reset()
}

// Run checks once, then re-checks on every auth-change event until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	events, unsubscribe := m.session.Bus().Subscribe()
	defer unsubscribe()
	defer m.Stop()

	m.Check()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.logger.Debug("auth change", "event", ev)
			m.Check()
		}
	}
}

// reset advances the generation and cancels the current timer. It returns the new generation.
func (m *Monitor) reset() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	if m.stopTimer != nil {
		m.stopTimer()
		m.stopTimer = nil
	}
	return m.gen
}

// expire performs logout-and-redirect if gen is still current. Only the first caller for a generation wins.
func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.gen++
	m.stopTimer = nil
	m.mu.Unlock()

	if err := m.session.store.Clear(); err != nil {
		m.logger.Error("failed to clear expired session", "error", err)
	}
	m.logger.Warn("session expired")
	m.notify(ExpiredNotice)
	m.nav.Navigate(m.login)
	m.session.bus.Publish(EventExpired)
}
