// Package meeting registers meetings under human-readable IDs.
package meeting

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/okian/meetglobe/internal/adapters/repository"
	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/pkg/logger"
	"github.com/okian/meetglobe/pkg/metrics"
)

const (
	collection = "meetings"

	defaultMaxTitleLength = 200
	defaultMaxAttempts    = 100
)

// Registry creates, loads, lists and deletes meeting records. Meetings are
// never updated once created.
type Registry struct {
	store  repository.Store
	logger logger.Logger
	clock  func() time.Time

	maxTitleLength int
	maxAttempts    int

	mu sync.Mutex
}

// NewRegistry returns a registry persisting to store.
func NewRegistry(store repository.Store, opts ...Option) *Registry {
	r := &Registry{
		store:          store,
		logger:         logger.NewNop(),
		clock:          time.Now,
		maxTitleLength: defaultMaxTitleLength,
		maxAttempts:    defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a meeting dated today (UTC) with ID "{slug}-{date}". If
// that ID is taken, "-2", "-3" and so on are appended until a free one is
// found.
func (r *Registry) Create(ctx context.Context, title string, participantIDs []string) (model.Meeting, error) {
	title, slug, err := r.checkTitle(title)
	if err != nil {
		return model.Meeting{}, err
	}

	now := r.clock().UTC()
	m := model.Meeting{
		Title:          title,
		Date:           now.Format(model.DateLayout),
		ParticipantIDs: slices.Clone(participantIDs),
		CreatedAt:      now,
	}
	if m.ParticipantIDs == nil {
		m.ParticipantIDs = []string{}
	}
	base := slug + "-" + m.Date

	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		m.ID = base
		if attempt > 1 {
			m.ID = base + "-" + strconv.Itoa(attempt)
		}
		if err := model.Validate(m); err != nil {
			return model.Meeting{}, err
		}
		b, err := json.Marshal(m)
		if err != nil {
			return model.Meeting{}, fmt.Errorf("encode meeting: %w", err)
		}
		err = r.store.Create(ctx, collection, m.ID, b)
		if errors.Is(err, repository.ErrAlreadyExists) {
			metrics.RecordMeetingCollision()
			continue
		}
		if err != nil {
			return model.Meeting{}, fmt.Errorf("create meeting: %w", err)
		}
		metrics.RecordMeetingCreated()
		r.logger.Info(ctx, "meeting created",
			logger.String("id", m.ID),
			logger.Int("participants", len(m.ParticipantIDs)),
			logger.Int("attempt", attempt))
		return m, nil
	}
	return model.Meeting{}, fmt.Errorf("%w: %s after %d attempts", ErrIDExhausted, base, r.maxAttempts)
}

// ValidateTitle reports whether title would be accepted by Create.
func (r *Registry) ValidateTitle(title string) error {
	_, _, err := r.checkTitle(title)
	return err
}

func (r *Registry) checkTitle(title string) (string, string, error) {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		return "", "", model.NewValidationError("title", "must not be empty")
	case utf8.RuneCountInString(title) > r.maxTitleLength:
		return "", "", model.NewValidationError("title", "must be at most %d characters", r.maxTitleLength)
	}
	slug := Slug(title)
	if slug == "" {
		return "", "", model.NewValidationError("title", "must contain at least one letter or digit")
	}
	return title, slug, nil
}

// Load returns a meeting by ID. A record that cannot be decoded or fails
// validation is reported as not found.
func (r *Registry) Load(ctx context.Context, id string) (model.Meeting, error) {
	b, err := r.store.Get(ctx, collection, id)
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidKey) {
		return model.Meeting{}, fmt.Errorf("%w: %q", ErrMeetingNotFound, id)
	}
	if err != nil {
		return model.Meeting{}, fmt.Errorf("load meeting: %w", err)
	}
	m, err := r.decode(ctx, id, b)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("%w: %q", ErrMeetingNotFound, id)
	}
	return m, nil
}

// List returns every valid meeting, newest date first, then newest
// createdAt, then ID ascending.
func (r *Registry) List(ctx context.Context) ([]model.Meeting, error) {
	recs, err := r.store.List(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	out := make([]model.Meeting, 0, len(recs))
	for _, rec := range recs {
		m, err := r.decode(ctx, rec.Key, rec.Data)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b model.Meeting) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Delete removes a meeting and reports whether it existed.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Delete(ctx, collection, id)
	if errors.Is(err, repository.ErrInvalidKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete meeting: %w", err)
	}
	if ok {
		metrics.RecordMeetingDeleted()
		r.logger.Info(ctx, "meeting deleted", logger.String("id", id))
	}
	return ok, nil
}

func (r *Registry) decode(ctx context.Context, key string, b []byte) (model.Meeting, error) {
	var m model.Meeting
	err := json.Unmarshal(b, &m)
	if err == nil {
		err = model.Validate(m)
	}
	if err == nil && m.ID != key {
		err = fmt.Errorf("id %q stored under %q", m.ID, key)
	}
	if err != nil {
		metrics.RecordCorruptRecord(collection)
		r.logger.Warn(ctx, "skipping corrupt meeting record",
			logger.String("key", key),
			logger.Error(err))
		return model.Meeting{}, err
	}
	return m, nil
}
