package visualize

import "github.com/okian/meetglobe/pkg/logger"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithArcWarnThreshold logs a warning when a meeting has more resolved
// points than n. Zero disables the warning.
func WithArcWarnThreshold(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.arcWarnThreshold = n
		}
	}
}
