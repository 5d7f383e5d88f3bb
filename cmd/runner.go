package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/catx/internal/repositories"
	"github.com/desertthunder/catx/internal/services"
	"github.com/desertthunder/catx/internal/session"
	"github.com/desertthunder/catx/internal/shared"
	"github.com/desertthunder/catx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	api     *services.APIService
	session *session.Manager
	history *repositories.SearchHistoryRepository
	engine  *tasks.Engine
	logger  *log.Logger
	output  io.Writer
	input   io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	API    *services.APIService
	DB     *sql.DB // migrated database backing the session store and search history
	Logger *log.Logger
	Output io.Writer
	Input  io.Reader
}

// NewRunner creates a new Runner with the provided configuration.
//
// The session manager becomes the API client's credential source and unauthorized handler.
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
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, nil)
	}

	r := &Runner{
		config: opts.Config,
		api:    opts.API,
		engine: tasks.NewEngine(opts.API, opts.Logger),
		logger: opts.Logger,
		output: opts.Output,
		input:  opts.Input,
	}

	if opts.DB != nil {
		r.history = repositories.NewSearchHistoryRepository(opts.DB)
		r.engine.SetRecorder(repositories.NewHistoryRecorder(r.history))

		r.session = session.NewManager(opts.API, repositories.NewSessionRepository(opts.DB), opts.Logger)
		opts.API.SetCredentials(r.session)
		opts.API.OnUnauthorized(r.session.OnUnauthorized)
	}
	return r
}

// SetLogger replaces the logger used by the runner, the API client and the session manager.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.api.SetLogger(l)
	if r.session != nil {
		r.session.SetLogger(l.With("component", "session"))
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, searchCommand, routeCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// restoreSession loads and validates the persisted session. A session that can no longer be restored is
// reported as a warning and leaves the runner anonymous.
func (r *Runner) restoreSession(ctx context.Context) (session.Snapshot, error) {
	if r.session == nil {
		return session.Snapshot{}, fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}

	if err := r.session.Initialize(ctx); err != nil {
		r.logger.Warn("saved session could not be restored", "error", err)
	}
	return r.session.Snapshot(), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
