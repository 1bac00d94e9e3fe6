// Package appcontext provides the application context interface used by all
// commands, so command packages depend on an interface rather than the app.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/osmhh/treesync/internal/config"
	"github.com/osmhh/treesync/internal/overpass"
)

// Interface defines what commands need from the application.
// The App struct from cmd/treesync/app implements it.
type Interface interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	// An empty string means auto-detect.
	OutputFormat() string

	// Settings returns the domain configuration of the run.
	Settings() *config.Config

	// Overpass returns a client for the configured Overpass endpoint.
	Overpass() *overpass.Client

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
