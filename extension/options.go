package extension

import (
	"log/slog"

	"github.com/stagewiki/verdict"
	"github.com/stagewiki/verdict/plugin"
	"github.com/stagewiki/verdict/store"
)

// ExtOption configures the Verdict Forge extension.
type ExtOption func(*Extension)

// WithStore pins the persistence backend, bypassing DI resolution.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.verdictOpts = append(e.verdictOpts, verdict.WithStore(s))
	}
}

// WithConfig replaces the extension configuration wholesale.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions forwards options to the engine built during Register.
func WithEngineOptions(opts ...verdict.Option) ExtOption {
	return func(e *Extension) {
		e.verdictOpts = append(e.verdictOpts, opts...)
	}
}

// WithPlugin attaches a lifecycle hook plugin to the engine.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the slog logger the engine and extension log through.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes skips HTTP route registration; the engine is still
// available through the DI container.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate skips schema migration on Start. The system policy
// catalog is still seeded.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
