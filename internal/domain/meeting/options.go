package meeting

import (
	"time"

	"github.com/okian/meetglobe/pkg/logger"
)

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock sets the time source for meeting dates and createdAt.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithMaxTitleLength bounds the trimmed title length in runes.
func WithMaxTitleLength(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxTitleLength = n
		}
	}
}

// WithMaxAttempts bounds how many suffixed IDs are tried on collision.
func WithMaxAttempts(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}
