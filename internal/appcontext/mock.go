package appcontext

import (
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/osmhh/treesync/internal/config"
	"github.com/osmhh/treesync/internal/overpass"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default value.
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	SettingsFunc     func() *config.Config
	OverpassFunc     func() *overpass.Client
	VersionFunc      func() string
	CommitFunc       func() string
	DateFunc         func() string
	BuiltByFunc      func() string
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Settings returns settings using the mock function or the defaults.
func (m *Mock) Settings() *config.Config {
	if m.SettingsFunc != nil {
		return m.SettingsFunc()
	}
	v := viper.New()
	config.SetDefaults(v)
	return config.FromViper(v)
}

// Overpass returns a client using the mock function or one for the
// configured endpoint.
func (m *Mock) Overpass() *overpass.Client {
	if m.OverpassFunc != nil {
		return m.OverpassFunc()
	}
	return overpass.New(m.Settings().OverpassURL)
}

// Version returns the version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}

// Commit returns the commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns the date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns the builder using the mock function or "unknown".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "unknown"
}

var _ Interface = (*Mock)(nil)
