package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/shelf/internal/cache"
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/services"
	"github.com/desertthunder/shelf/internal/session"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	library      services.Library
	session      *session.Session
	cache        *cache.Cache
	httpClient   *http.Client
	logger       *log.Logger
	output       io.Writer
	input        *bufio.Reader
	readPassword func(prompt string) (string, error)
	now          func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Library    services.Library
	Session    *session.Session
	Cache      *cache.Cache
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	// ReadPassword prompts without echo. Defaults to the terminal on stdin.
	ReadPassword func(prompt string) (string, error)
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Session == nil {
		opts.Session = session.New(session.Options{Logger: opts.Logger})
	}
	if opts.Cache == nil && opts.Library != nil {
		opts.Cache = cache.New(opts.Library, opts.Session, opts.Logger)
	}

	r := &Runner{
		config:       opts.Config,
		library:      opts.Library,
		session:      opts.Session,
		cache:        opts.Cache,
		httpClient:   opts.HTTPClient,
		logger:       opts.Logger,
		output:       opts.Output,
		input:        bufio.NewReader(opts.Input),
		readPassword: opts.ReadPassword,
		now:          func() time.Time { return opts.Session.Clock().Now() },
	}
	if r.readPassword == nil {
		r.readPassword = r.terminalPassword
	}
	return r
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, profileCommand, booksCommand, wishlistCommand,
		exploreCommand, uploadCommand, statsCommand, usersCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireSession fails with [shared.ErrNotAuthenticated] unless the stored token is active.
func (r *Runner) requireSession() (*session.Claims, error) {
	claims, err := r.session.RequireActive()
	if err != nil {
		r.logger.Debug("session check failed", "error", err)
		return nil, err
	}
	return claims, nil
}

// requireRole is [Runner.requireSession] plus a permission check on the stored role.
func (r *Runner) requireRole(p models.Permission) (*session.Claims, error) {
	claims, err := r.requireSession()
	if err != nil {
		return nil, err
	}
	role, err := r.session.Role()
	if err != nil {
		return nil, err
	}
	if !role.Can(p) {
		return nil, fmt.Errorf("%w: %s requires more than %s", shared.ErrForbidden, p, role)
	}
	return claims, nil
}

// prompt returns fallback when set, otherwise reads one line from input.
func (r *Runner) prompt(label, fallback string) (string, error) {
	if fallback != "" {
		return fallback, nil
	}
	r.writePlain("%s: ", label)
	line, err := r.input.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, strings.ToLower(label))
	}
	return strings.TrimSpace(line), nil
}

func (r *Runner) terminalPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return r.prompt(prompt, "")
	}

	r.writePlain("%s: ", prompt)
	b, err := term.ReadPassword(fd)
	r.writePlain("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
