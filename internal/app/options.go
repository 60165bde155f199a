package service

import (
	"time"

	"github.com/okian/meetglobe/internal/adapters/mq/publisher"
	"github.com/okian/meetglobe/internal/adapters/repository"
	"github.com/okian/meetglobe/internal/domain/geo"
	"github.com/okian/meetglobe/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store for members and meetings.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCitySource sets where the city dataset is loaded from.
func WithCitySource(src geo.CitySource) Option {
	return func(s *Service) {
		if src != nil {
			s.cities = src
		}
	}
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(p publisher.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the time source for dates and events.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMaxParticipants caps the roster size of a new meeting.
func WithMaxParticipants(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxParticipants = n
		}
	}
}

// WithMaxTitleLength caps meeting titles in characters.
func WithMaxTitleLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTitleLength = n
		}
	}
}

// WithArcWarnThreshold sets the point count above which visualizations log
// a warning.
func WithArcWarnThreshold(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.arcWarnThreshold = n
		}
	}
}

// WithRequireResolvedCity drops participants whose city cannot be resolved
// instead of keeping them with a warning.
func WithRequireResolvedCity(require bool) Option {
	return func(s *Service) {
		s.requireResolvedCity = require
	}
}

// WithPublishWorkers sets the number of event publishing goroutines.
func WithPublishWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.publishWorkers = n
		}
	}
}

// WithEventQueueSize bounds the number of unpublished events held in memory.
func WithEventQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.eventQueueSize = n
		}
	}
}
