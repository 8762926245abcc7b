package verdict

import (
	"log/slog"

	"github.com/stagewiki/verdict/plugin"
	"github.com/stagewiki/verdict/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithEvaluator sets the statement evaluator.
func WithEvaluator(ev Evaluator) Option { return func(e *Engine) { e.evaluator = ev } }

// WithCache sets the check result cache.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithPrincipalResolver sets the resolver used to load principals by ID.
func WithPrincipalResolver(r PrincipalResolver) Option {
	return func(e *Engine) { e.principals = r }
}

// WithResourceResolver sets the resolver used to load resource descriptors.
func WithResourceResolver(r ResourceResolver) Option {
	return func(e *Engine) { e.resources = r }
}

// WithPlugin registers a plugin with the engine.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(x)
	}
}
