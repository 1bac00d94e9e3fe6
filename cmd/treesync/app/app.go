// Package app provides the application context and dependency management
// for the treesync CLI: configuration, logging and the clients the commands
// share.
package app

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/osmhh/treesync/internal/appcontext"
	"github.com/osmhh/treesync/internal/config"
	"github.com/osmhh/treesync/internal/overpass"
	"github.com/osmhh/treesync/internal/transport"
	"github.com/osmhh/treesync/pkg/errors"
)

// App represents the treesync application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Overpass client (lazy-initialized)
	mu       sync.Mutex
	overpass *overpass.Client
}

var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	cfg, err := LoadConfig("")
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
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

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Settings returns the domain configuration.
func (a *App) Settings() *config.Config {
	return a.config.Settings
}

// Overpass returns the Overpass client, creating it on first use.
func (a *App) Overpass() *overpass.Client {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.overpass == nil {
		a.overpass = overpass.New(a.config.Settings.OverpassURL,
			transport.WithUserAgent("treesync/"+a.version),
		)
	}
	return a.overpass
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
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

// WithOverpass sets a custom Overpass client (useful for testing).
func WithOverpass(c *overpass.Client) Option {
	return func(a *App) error {
		a.overpass = c
		return nil
	}
}
