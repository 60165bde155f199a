// Package publisher delivers meeting lifecycle events to outside consumers.
package publisher

import (
	"context"

	"github.com/okian/meetglobe/internal/domain/model"
)

// Publisher sends a single event.
type Publisher interface {
	Publish(ctx context.Context, e model.Event) error
	Close() error
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, model.Event) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

// Subject joins prefix and the event type, e.g. "meetglobe.meetings.created".
func Subject(prefix string, t model.EventType) string {
	if prefix == "" {
		return string(t)
	}
	return prefix + "." + string(t)
}
