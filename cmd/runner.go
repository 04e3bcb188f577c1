package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songpush/internal/repositories"
	"github.com/desertthunder/songpush/internal/services"
	"github.com/desertthunder/songpush/internal/shared"
	"github.com/desertthunder/songpush/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// External tools, the suggester and the database are built lazily from the loaded config.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	ytdlp      *services.YtDlp
	adb        *services.ADB
	suggester  services.Suggester
	override   services.Suggester
	db         *sql.DB
	downloads  *repositories.DownloadRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Suggester  services.Suggester
	DB         *sql.DB
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

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		override:   opts.Suggester,
		db:         opts.DB,
	}
	if opts.DB != nil {
		r.downloads = repositories.NewDownloadRepository(opts.DB)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tuiCommand, getCommand, similarCommand, deviceCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config named by --config (defaults when the file is missing), applies .env overrides
// and the log level.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config := shared.DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return ctx, err
		}
		config = loaded
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	if err := config.ApplyEnv(); err != nil {
		r.logger.Warn("failed to apply environment", "error", err)
	}

	if err := shared.SetLogLevelString(r.logger, config.Log.Level); err != nil {
		return ctx, err
	}
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = path
	r.Configure(config)
	return ctx, nil
}

// After releases the database connection.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Configure replaces the config and drops collaborators built from the previous one.
func (r *Runner) Configure(config *shared.Config) {
	r.config = config
	r.ytdlp = nil
	r.adb = nil
	r.suggester = nil
}

// SetLogger swaps the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.ytdlp = nil
	r.adb = nil
}

// Close closes the history database if it was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	r.downloads = nil
	return err
}

func (r *Runner) downloader() *services.YtDlp {
	if r.ytdlp == nil {
		r.ytdlp = services.NewYtDlp(r.config, r.logger)
	}
	return r.ytdlp
}

func (r *Runner) transferer() *services.ADB {
	if r.adb == nil {
		r.adb = services.NewADB(r.config, r.logger)
	}
	return r.adb
}

// similar returns the configured suggester. A provider that cannot be built (usually missing credentials)
// degrades to one that never suggests, so downloads still work.
func (r *Runner) similar() services.Suggester {
	if r.override != nil {
		return r.override
	}
	if r.suggester != nil {
		return r.suggester
	}

	s, err := services.NewSuggester(r.config, r.downloader())
	if err != nil {
		r.logger.Warn("suggestions disabled", "provider", r.config.Suggest.Provider, "error", err)
		s = services.NoneSuggester{}
	}
	r.suggester = s
	return s
}

// history opens and migrates the database on first use.
func (r *Runner) history() (*repositories.DownloadRepository, error) {
	if r.downloads != nil {
		return r.downloads, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	applied, err := shared.RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if applied > 0 {
		r.logger.Debug("applied migrations", "count", applied)
	}

	r.db = db
	r.downloads = repositories.NewDownloadRepository(db)
	return r.downloads, nil
}

// pipeline wires the collaborators into a [tasks.Pipeline]. History is recorded when the database opens.
func (r *Runner) pipeline() *tasks.Pipeline {
	p := tasks.NewPipeline(r.similar(), r.downloader(), r.transferer(), tasks.Options{
		SuggestCount:    r.config.Suggest.Count,
		SuggestTimeout:  r.config.SuggestTimeout(),
		DownloadTimeout: r.config.DownloadTimeout(),
		TransferTimeout: r.config.TransferTimeout(),
	}).WithLogger(r.logger)

	if repo, err := r.history(); err != nil {
		r.logger.Warn("download history disabled", "error", err)
	} else {
		p.WithHistory(repositories.NewHistoryAdapter(repo))
	}
	return p
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
