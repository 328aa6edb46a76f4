// Package app provides the application context and dependency management
// for the eccnsync CLI: configuration, logging, the job catalog and the
// sync client, created lazily and shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/eccnsync"
	"github.com/agentstation/eccnsync/internal/config"
	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/internal/output"
	"github.com/agentstation/eccnsync/pkg/logging"
)

// App represents the eccnsync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// CLI configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Lazy-initialized, shared
	mu       sync.Mutex
	settings *config.Config
	client   eccnsync.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the CLI configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Context returns ctx carrying the application logger.
func (a *App) Context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.logger)
}

// OutputFormat returns the --format value, or a format detected from stdout.
func (a *App) OutputFormat() output.Format {
	return output.DetectFormat(a.config.Format)
}

// Settings loads job and credential configuration once.
func (a *App) Settings() (*config.Config, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.settings != nil {
		return a.settings, nil
	}

	settings, err := config.Load(config.Options{ConfigFile: a.config.ConfigFile})
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("config_file", settings.ConfigFile).
		Str("credentials_file", settings.CredentialsFile).
		Int("job_overrides", len(settings.Jobs)).
		Msg("Loaded configuration")
	a.settings = settings
	return settings, nil
}

// Catalog returns the built-in jobs merged with the configured ones.
func (a *App) Catalog() (*jobs.Catalog, error) {
	settings, err := a.Settings()
	if err != nil {
		return nil, err
	}
	return settings.Catalog()
}

// DryRun reports whether configuration asks for dry runs by default.
func (a *App) DryRun() bool {
	settings, err := a.Settings()
	return err == nil && settings.DryRun
}

// Client returns the shared live client. Credentials are checked on first
// use so a misconfigured run fails before any job starts.
func (a *App) Client() (eccnsync.Client, error) {
	settings, err := a.Settings()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client != nil {
		return a.client, nil
	}
	if err := settings.Credentials.Validate(); err != nil {
		return nil, err
	}
	client, err := eccnsync.New(eccnsync.WithCredentials(settings.Credentials))
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// ClientWithOptions returns a new client with custom options, e.g. file
// adapters for an offline reconcile. It is not cached.
func (a *App) ClientWithOptions(opts ...eccnsync.Option) (eccnsync.Client, error) {
	return eccnsync.New(opts...)
}

// Shutdown performs graceful shutdown of the application. Runs are
// synchronous, so there is nothing in flight to stop once Execute returns.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Debug().Msg("Shutting down")
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom CLI configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithSettings sets preloaded job and credential configuration.
func WithSettings(settings *config.Config) Option {
	return func(a *App) error {
		a.settings = settings
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(client eccnsync.Client) Option {
	return func(a *App) error {
		a.client = client
		return nil
	}
}
