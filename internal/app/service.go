// Package service wires the registries, resolver and visualization engine
// into the operations exposed by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/meetglobe/internal/adapters/mq/publisher"
	"github.com/okian/meetglobe/internal/adapters/mq/queue"
	"github.com/okian/meetglobe/internal/adapters/mq/worker"
	"github.com/okian/meetglobe/internal/adapters/repository"
	"github.com/okian/meetglobe/internal/domain/geo"
	"github.com/okian/meetglobe/internal/domain/meeting"
	"github.com/okian/meetglobe/internal/domain/member"
	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/internal/domain/visualize"
	"github.com/okian/meetglobe/pkg/logger"

	"github.com/google/uuid"
)

const (
	defaultMaxParticipants  = 500
	defaultMaxTitleLength   = 200
	defaultArcWarnThreshold = 200
	defaultPublishWorkers   = 1
	defaultEventQueueSize   = 1024
	shutdownTimeout         = 10 * time.Second
)

// CreateResult is returned by CreateMeeting.
type CreateResult struct {
	Meeting  model.Meeting   `json:"meeting"`
	Warnings []model.Warning `json:"warnings"`
}

// Service implements the meeting and visualization operations.
type Service struct {
	mu sync.RWMutex

	// Dependencies
	store     repository.Store
	cities    geo.CitySource
	publisher publisher.Publisher

	// Core components
	resolver *geo.Resolver
	members  *member.Registry
	meetings *meeting.Registry
	engine   *visualize.Engine
	events   *queue.InMemoryQueue
	pool     *worker.Pool

	// Configuration
	maxParticipants     int
	maxTitleLength      int
	arcWarnThreshold    int
	requireResolvedCity bool
	publishWorkers      int
	eventQueueSize      int
	clock               func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service. Without options it keeps everything in memory,
// knows no cities and discards events.
func New(opts ...Option) *Service {
	s := &Service{
		store:            repository.NewMemoryStore(),
		cities:           geo.StaticSource{},
		publisher:        publisher.Noop{},
		maxParticipants:  defaultMaxParticipants,
		maxTitleLength:   defaultMaxTitleLength,
		arcWarnThreshold: defaultArcWarnThreshold,
		publishWorkers:   defaultPublishWorkers,
		eventQueueSize:   defaultEventQueueSize,
		clock:            time.Now,
		logger:           logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.resolver = geo.NewResolver(s.cities,
		geo.WithLogger(s.logger.Named("geo")),
		geo.WithClock(s.clock))
	s.members = member.NewRegistry(s.store,
		member.WithLogger(s.logger.Named("member")),
		member.WithClock(s.clock))
	s.meetings = meeting.NewRegistry(s.store,
		meeting.WithLogger(s.logger.Named("meeting")),
		meeting.WithClock(s.clock),
		meeting.WithMaxTitleLength(s.maxTitleLength))
	s.engine = visualize.NewEngine(s.members, s.resolver,
		visualize.WithLogger(s.logger.Named("visualize")),
		visualize.WithArcWarnThreshold(s.arcWarnThreshold))
	s.events = queue.NewInMemoryQueue(queue.WithCapacity(s.eventQueueSize))
	return s
}

// Start warms the city cache and starts the event publishers. A failed
// city load is logged and retried lazily on the next lookup.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting meetglobe service...")

	if err := s.resolver.Refresh(ctx); err != nil {
		s.logger.Warn(ctx, "city dataset not loaded at startup", logger.Error(err))
	}

	s.pool = worker.NewPool(s.publishWorkers, s.events, s.publisher, s.logger.Named("events"))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "meetglobe service started",
		logger.Int("cities", s.resolver.Size(ctx)),
		logger.Int("publishWorkers", s.publishWorkers),
		logger.Int("maxParticipants", s.maxParticipants))
	return nil
}

// Stop drains pending events, then closes the publisher and the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping meetglobe service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "event pool shutdown", logger.Error(err))
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Error(ctx, "publisher close", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "store close", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "meetglobe service stopped")
}

// CreateMeeting registers every participant as a member and stores a meeting
// referencing them. Participants that cannot be registered are skipped and
// reported as warnings, as are participants whose city is unknown.
func (s *Service) CreateMeeting(ctx context.Context, title string, participants []model.Participant) (CreateResult, error) {
	switch {
	case len(participants) == 0:
		return CreateResult{}, model.NewValidationError("participants", "must not be empty")
	case len(participants) > s.maxParticipants:
		return CreateResult{}, model.NewValidationError("participants", "must have at most %d entries", s.maxParticipants)
	}
	if err := s.meetings.ValidateTitle(title); err != nil {
		return CreateResult{}, err
	}

	warnings := []model.Warning{}
	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		if err := model.Validate(p); err != nil {
			warnings = append(warnings, model.MemberFailed(p.Name, p.City, err))
			continue
		}
		m, err := s.members.FindOrCreate(ctx, p.Name, p.City)
		if errors.Is(err, model.ErrValidation) {
			warnings = append(warnings, model.MemberFailed(p.Name, p.City, err))
			continue
		}
		if err != nil {
			return CreateResult{}, err
		}

		_, err = s.resolver.Resolve(ctx, m.City)
		switch {
		case errors.Is(err, model.ErrNotFound):
			warnings = append(warnings, model.UnresolvedCity(m.ID, m.Name, m.City))
			if s.requireResolvedCity {
				continue
			}
		case err != nil:
			return CreateResult{}, fmt.Errorf("resolve city: %w", err)
		}
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return CreateResult{}, model.NewValidationError("participants",
			"none of %d participants could be added: %s", len(participants), strings.Join(model.Messages(warnings), "; "))
	}

	mt, err := s.meetings.Create(ctx, title, ids)
	if err != nil {
		return CreateResult{}, err
	}
	for _, w := range warnings {
		s.logger.Warn(ctx, "participant warning",
			logger.String("meeting", mt.ID),
			logger.String("kind", string(w.Kind)),
			logger.String("name", w.Name),
			logger.String("city", w.City))
	}
	s.emit(ctx, model.Event{
		Type:         model.EventMeetingCreated,
		MeetingID:    mt.ID,
		Title:        mt.Title,
		Date:         mt.Date,
		Participants: len(mt.ParticipantIDs),
	})
	return CreateResult{Meeting: mt, Warnings: warnings}, nil
}

// GetVisualization computes the points and arcs of a stored meeting.
func (s *Service) GetVisualization(ctx context.Context, id string) (model.Visualization, error) {
	mt, err := s.meetings.Load(ctx, id)
	if err != nil {
		return model.Visualization{}, err
	}
	return s.engine.Compute(ctx, mt)
}

// GetMeeting returns a stored meeting.
func (s *Service) GetMeeting(ctx context.Context, id string) (model.Meeting, error) {
	return s.meetings.Load(ctx, id)
}

// ListMeetings returns all meetings, newest first.
func (s *Service) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	return s.meetings.List(ctx)
}

// DeleteMeeting removes a meeting. Members are kept.
func (s *Service) DeleteMeeting(ctx context.Context, id string) error {
	ok, err := s.meetings.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", meeting.ErrMeetingNotFound, id)
	}
	s.emit(ctx, model.Event{Type: model.EventMeetingDeleted, MeetingID: id})
	return nil
}

// GetMember returns a member by ID.
func (s *Service) GetMember(ctx context.Context, id string) (model.Member, error) {
	return s.members.Get(ctx, id)
}

// ListMembers returns every member.
func (s *Service) ListMembers(ctx context.Context) ([]model.Member, error) {
	return s.members.List(ctx)
}

// ResolveCity returns the dataset entry for name.
func (s *Service) ResolveCity(ctx context.Context, name string) (model.City, error) {
	return s.resolver.Lookup(ctx, name)
}

// RefreshCities reloads the city dataset and returns its size.
func (s *Service) RefreshCities(ctx context.Context) (int, error) {
	if err := s.resolver.Refresh(ctx); err != nil {
		return 0, err
	}
	return s.resolver.Size(ctx), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	stats := map[string]any{
		"started":         started,
		"maxParticipants": s.maxParticipants,
		"cities":          s.resolver.Size(ctx),
		"queuedEvents":    s.events.Len(ctx),
	}
	if n, err := s.members.Count(ctx); err == nil {
		stats["members"] = n
	}
	if list, err := s.meetings.List(ctx); err == nil {
		stats["meetings"] = len(list)
	}
	return stats
}

// emit queues a lifecycle event. A full or closed queue drops the event
// with a log line; the operation itself has already succeeded.
func (s *Service) emit(ctx context.Context, e model.Event) {
	e.ID = uuid.NewString()
	e.OccurredAt = s.clock().UTC()
	if err := s.events.Enqueue(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn(ctx, "lifecycle event dropped",
			logger.String("type", string(e.Type)),
			logger.String("meeting", e.MeetingID),
			logger.Error(err))
	}
}
