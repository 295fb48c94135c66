package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/cache"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/nav"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
)

// Deps are the services the TUI drives.
type Deps struct {
	Library services.Library
	Session *session.Session
	Cache   *cache.Cache
	Config  *shared.Config
	Logger  *log.Logger
	// OpenBrowser defaults to [shared.OpenBrowser].
	OpenBrowser func(string) error
}

// Model represents the TUI application state.
type Model struct {
	env     *env
	cancel  context.CancelFunc
	router  *nav.Router
	monitor *session.Monitor

	moved  chan struct{}
	events chan Msg
	auth   <-chan session.Event
	unsub  func()

	screen  screen
	scopeID uint64
	path    string
	notice  *notice
	confirm *confirmation
	width   int
	height  int
	help    help.Model
}

// NewModel creates the TUI starting at start. Guards apply to start like any other location.
func NewModel(ctx context.Context, deps Deps, start nav.Location) *Model {
	ctx, cancel := context.WithCancel(ctx)
	if deps.Config == nil {
		deps.Config = shared.DefaultConfig()
	}
	if deps.Logger == nil {
		deps.Logger = shared.NewLogger(nil)
	}
	if deps.OpenBrowser == nil {
		deps.OpenBrowser = shared.OpenBrowser
	}

	sc := deps.Config.Session
	history := nav.NewHistory(start)
	m := &Model{
		cancel: cancel,
		router: nav.NewRouter(nav.DefaultRoutes, sc.LandingPath, sc.HomePath),
		moved:  make(chan struct{}, 1),
		events: make(chan Msg, 16),
		help:   help.New(),
	}
	m.env = &env{
		ctx:     ctx,
		lib:     deps.Library,
		sess:    deps.Session,
		cache:   deps.Cache,
		history: history,
		cfg:     deps.Config,
		logger:  deps.Logger,
		keys:    newKeyMap(),
		open:    deps.OpenBrowser,
	}

	history.OnChange(func(nav.Location) {
		select {
		case m.moved <- struct{}{}:
		default:
		}
	})
	m.monitor = session.NewMonitor(session.MonitorOptions{
		Session:     deps.Session,
		Navigator:   history,
		Notify:      func(n session.Notice) { m.post(noticeMsg(NoticeInfo, n.Title, n.Text)) },
		LandingPath: sc.LandingPath,
		LoginPath:   sc.LoginPath,
		PublicPaths: sc.PublicPaths,
		Logger:      deps.Logger,
	})
	m.auth, m.unsub = deps.Session.Bus().Subscribe()
	return m
}

// Location returns the current location as shown in the location bar.
func (m *Model) Location() nav.Location { return m.env.history.Current() }

// post queues an application message from any goroutine. It drops the message if the queue is full.
func (m *Model) post(msg Msg) {
	select {
	case m.events <- msg:
	default:
		m.env.logger.Warn("dropped ui event", "kind", msg.kind)
	}
}

// Init routes to the start location, starts the session monitor and warms the cache.
func (m *Model) Init() tea.Cmd {
	go m.monitor.Run(m.env.ctx)

	return tea.Batch(
		m.route(),
		m.refreshCache(),
		m.waitMoved(),
		m.waitEvent(),
		m.waitAuth(),
	)
}

// Close stops background work. Call it after the program exits.
func (m *Model) Close() {
	if m.screen != nil {
		m.screen.close()
	}
	m.unsub()
	m.cancel()
	m.monitor.Stop()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.env.width = msg.Width
		m.help.Width = msg.Width
		return m, m.forward(msg)

	case Msg:
		return m, m.handleMsg(msg)

	case queuedMsg:
		return m, tea.Batch(m.handleMsg(msg.Msg), m.waitEvent())

	case scopedMsg:
		if msg.scope != m.scopeID || msg.msg == nil || m.screen == nil {
			return m, nil
		}
		return m, m.screen.update(msg.msg)

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, m.forward(msg)
}

func (m *Model) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgLocationChanged:
		return tea.Batch(m.route(), m.waitMoved())
	case MsgNotice:
		n := msg.data.(notice)
		m.notice = &n
		return nil
	case MsgConfirm:
		c := msg.data.(confirmation)
		m.confirm = &c
		return nil
	case MsgSessionEvent:
		ev := msg.data.(session.Event)
		m.env.logger.Debug("session event", "event", ev)
		var cmd tea.Cmd
		switch ev {
		case session.EventLogin:
			cmd = m.refreshCache()
		case session.EventLogout, session.EventExpired:
			m.env.cache.Reset()
		}
		return tea.Batch(cmd, m.waitAuth())
	}
	return nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.env.keys
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.confirm != nil {
		c := m.confirm
		switch {
		case key.Matches(msg, k.yes):
			m.confirm = nil
			return m, c.onYes
		case key.Matches(msg, k.no):
			m.confirm = nil
		}
		return m, nil
	}

	m.notice = nil
	if m.screen != nil && m.screen.capturing() {
		return m, m.screen.update(msg)
	}

	switch {
	case key.Matches(msg, k.quit):
		return m, tea.Quit
	case key.Matches(msg, k.back):
		m.env.history.Back()
		return m, nil
	case key.Matches(msg, k.logout) && m.env.sess.Status().Present():
		return m, confirm("Log out of shelf?", m.logout())
	case key.Matches(msg, k.nav) && m.env.sess.Status().Present():
		if path := shortcut(msg.String(), m.env.role()); path != "" {
			m.env.navigate(path)
		}
		return m, nil
	}

	return m, m.forward(msg)
}

func (m *Model) logout() tea.Cmd {
	return func() tea.Msg {
		if err := m.env.sess.Logout(); err != nil {
			return noticeMsg(NoticeError, "Logout failed", err.Error())
		}
		m.env.navigate(m.env.cfg.Session.LandingPath)
		return noticeMsg(NoticeSuccess, "Logged out", "See you soon")
	}
}

// shortcut maps the number keys to the navbar destinations.
func shortcut(k string, role models.Role) string {
	switch k {
	case "1":
		return "/home"
	case "2":
		return "/MyBooks"
	case "3":
		return "/explore"
	case "4":
		return "/wishlist"
	case "5":
		return "/analytics"
	case "6":
		return "/profile"
	case "7":
		if role.Can(models.PermViewConsole) {
			return "/console"
		}
	}
	return ""
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	if m.screen == nil {
		return nil
	}
	return m.screen.update(msg)
}

// route resolves the current location, follows guard redirects and swaps the screen when the path changed.
func (m *Model) route() tea.Cmd {
	loc := m.env.history.Current()
	res := m.router.Resolve(loc.Path, m.env.sess.Status())
	if res.Redirect != "" && res.Redirect != loc.Path {
		m.env.logger.Debug("redirect", "from", loc.Path, "to", res.Redirect)
		m.env.navigate(res.Redirect)
		return nil
	}

	m.monitor.Check()
	if m.env.history.Path() != loc.Path {
		return nil
	}
	if m.screen != nil && loc.Path == m.path {
		return nil
	}

	if m.screen != nil {
		m.screen.close()
	}
	m.scopeID++
	m.path = loc.Path
	m.screen = m.newScreen(res, loc, scope(m.scopeID))
	m.env.logger.Debug("screen", "path", loc.Path, "screen", res.Route.Screen)
	return m.screen.init()
}

func (m *Model) newScreen(res nav.Resolution, loc nav.Location, sc scope) screen {
	e := m.env
	switch res.Route.Screen {
	case nav.ScreenLogin:
		return newLoginScreen(e, sc)
	case nav.ScreenSignup:
		return newSignupScreen(e, sc)
	case nav.ScreenHome:
		return newHomeScreen(e, sc)
	case nav.ScreenLibrary:
		return newLibraryScreen(e, sc, loc)
	case nav.ScreenExplore:
		return newExploreScreen(e, sc, loc)
	case nav.ScreenWishlist:
		return newWishlistScreen(e, sc)
	case nav.ScreenBook:
		return newBookScreen(e, sc, res.Params["id"], loc)
	case nav.ScreenAnalytics:
		return newAnalyticsScreen(e, sc)
	case nav.ScreenConsole:
		return newConsoleScreen(e, sc)
	case nav.ScreenProfile:
		return newProfileScreen(e, sc)
	default:
		return newLandingScreen(e, sc)
	}
}

func (m *Model) refreshCache() tea.Cmd {
	return func() tea.Msg {
		if err := m.env.cache.Refresh(m.env.ctx); err != nil {
			m.env.logger.Warn("cache refresh failed", "error", err)
		}
		return nil
	}
}

func (m *Model) waitMoved() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.moved:
			return locationChangedMsg()
		case <-m.env.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return queuedMsg{msg}
		case <-m.env.ctx.Done():
			return nil
		}
	}
}

func (m *Model) waitAuth() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-m.auth:
			if !ok {
				return nil
			}
			return sessionEventMsg(ev)
		case <-m.env.ctx.Done():
			return nil
		}
	}
}

// View renders the location bar, the current screen and the footer.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.locationBar())
	b.WriteString("\n\n")
	if m.screen != nil {
		b.WriteString(m.screen.view())
	}
	b.WriteString("\n\n")

	switch {
	case m.confirm != nil:
		b.WriteString(styles.warn.Render(m.confirm.prompt))
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.env.keys.yes, m.env.keys.no}))
		return b.String()
	case m.notice != nil:
		b.WriteString(renderNotice(*m.notice))
		b.WriteString("\n")
	}

	var keys []key.Binding
	if m.screen != nil {
		keys = m.screen.help()
	}
	keys = append(keys, m.env.keys.ShortHelp()...)
	if m.env.sess.Status().Present() {
		keys = append(keys, m.env.keys.logout)
	}
	b.WriteString(m.help.ShortHelpView(keys))
	return b.String()
}

func (m *Model) locationBar() string {
	left := styles.bar.Render("shelf") + styles.path.Render(m.env.history.Current().String())

	who := "guest"
	if u := m.env.cache.User(); u != nil && u.Username != "" {
		who = fmt.Sprintf("%s (%s)", u.Username, u.Role)
	} else if role := m.env.role(); role != "" {
		who = string(role)
	}
	right := styles.muted.Render(who)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderNotice(n notice) string {
	text := n.title
	if n.text != "" {
		text += ": " + n.text
	}
	switch n.kind {
	case NoticeSuccess:
		return styles.ok.Render("✓ " + text)
	case NoticeError:
		return styles.err.Render("✗ " + text)
	default:
		return styles.warn.Render("• " + text)
	}
}
