// Package member deduplicates people into stable member identities.
package member

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/meetglobe/internal/adapters/repository"
	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/internal/domain/normalize"
	"github.com/okian/meetglobe/pkg/logger"
	"github.com/okian/meetglobe/pkg/metrics"

	"github.com/google/uuid"
)

// The whole member collection lives in one record.
const (
	collection = "members"
	recordKey  = "all"
)

// Registry maps (name, city) pairs onto members. A member is created the
// first time a pair is seen and returned unchanged afterwards.
type Registry struct {
	store  repository.Store
	logger logger.Logger
	clock  func() time.Time
	newID  func() string

	mu sync.Mutex
}

// NewRegistry returns a registry persisting to store.
func NewRegistry(store repository.Store, opts ...Option) *Registry {
	r := &Registry{
		store:  store,
		logger: logger.NewNop(),
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindOrCreate returns the member matching name and city after
// normalization, creating it if no case-insensitive match exists.
func (r *Registry) FindOrCreate(ctx context.Context, name, city string) (model.Member, error) {
	n := normalize.Normalize(name)
	if n == "" {
		return model.Member{}, model.NewValidationError("name", "must not be empty")
	}
	c := normalize.Normalize(city)
	if c == "" {
		return model.Member{}, model.NewValidationError("city", "must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		found    model.Member
		created  bool
		migrated int
	)
	err := r.store.Update(ctx, collection, recordKey, func(cur []byte) ([]byte, error) {
		created, migrated = false, 0
		members, err := decode(cur)
		if err != nil {
			return nil, err
		}
		migrated = r.assignIDs(members)
		for _, m := range members {
			if strings.EqualFold(m.Name, n) && strings.EqualFold(m.City, c) {
				found = m
				if migrated == 0 {
					return nil, repository.ErrNoChange
				}
				return encode(members)
			}
		}
		found = model.Member{ID: r.newID(), Name: n, City: c, CreatedAt: r.clock().UTC()}
		created = true
		return encode(append(members, found))
	})
	if err != nil {
		return model.Member{}, fmt.Errorf("find or create member: %w", err)
	}

	if migrated > 0 {
		r.reportMigration(ctx, migrated)
	}
	if created {
		metrics.RecordMemberCreated()
		r.logger.Debug(ctx, "member created",
			logger.String("id", found.ID),
			logger.String("name", found.Name),
			logger.String("city", found.City))
	} else {
		metrics.RecordMemberDedupHit()
	}
	return found, nil
}

// GetByIDs returns the members for ids in the same order. Unknown IDs are
// omitted; a duplicate ID yields the member once per occurrence.
func (r *Registry) GetByIDs(ctx context.Context, ids []string) ([]model.Member, error) {
	members, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	out := make([]model.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// Get returns a single member.
func (r *Registry) Get(ctx context.Context, id string) (model.Member, error) {
	members, err := r.load(ctx)
	if err != nil {
		return model.Member{}, err
	}
	for _, m := range members {
		if m.ID == id {
			return m, nil
		}
	}
	return model.Member{}, fmt.Errorf("%w: %q", ErrMemberNotFound, id)
}

// List returns all members in creation order.
func (r *Registry) List(ctx context.Context) ([]model.Member, error) {
	return r.load(ctx)
}

// Count returns the number of members.
func (r *Registry) Count(ctx context.Context) (int, error) {
	members, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(members), nil
}

// load reads the collection, migrating legacy entries without an ID.
func (r *Registry) load(ctx context.Context) ([]model.Member, error) {
	b, err := r.store.Get(ctx, collection, recordKey)
	if errors.Is(err, repository.ErrNotFound) {
		return []model.Member{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	members, err := decode(b)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	for _, m := range members {
		if m.ID == "" {
			return r.migrate(ctx)
		}
	}
	return members, nil
}

// migrate assigns IDs to legacy members and persists the result once.
func (r *Registry) migrate(ctx context.Context) ([]model.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		members []model.Member
		n       int
	)
	err := r.store.Update(ctx, collection, recordKey, func(cur []byte) ([]byte, error) {
		var err error
		members, err = decode(cur)
		if err != nil {
			return nil, err
		}
		n = r.assignIDs(members)
		if n == 0 {
			return nil, repository.ErrNoChange
		}
		return encode(members)
	})
	if err != nil {
		return nil, fmt.Errorf("migrate members: %w", err)
	}
	if n > 0 {
		r.reportMigration(ctx, n)
	}
	return members, nil
}

func (r *Registry) assignIDs(members []model.Member) int {
	n := 0
	for i := range members {
		if members[i].ID == "" {
			members[i].ID = r.newID()
			n++
		}
	}
	return n
}

func (r *Registry) reportMigration(ctx context.Context, n int) {
	metrics.RecordMemberMigrated(n)
	r.logger.Warn(ctx, "assigned ids to legacy members", logger.Int("count", n))
}

func decode(b []byte) ([]model.Member, error) {
	if len(b) == 0 {
		return []model.Member{}, nil
	}
	var members []model.Member
	if err := json.Unmarshal(b, &members); err != nil {
		metrics.RecordCorruptRecord(collection)
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	if members == nil {
		members = []model.Member{}
	}
	return members, nil
}

func encode(members []model.Member) ([]byte, error) {
	b, err := json.Marshal(members)
	if err != nil {
		return nil, fmt.Errorf("encode members: %w", err)
	}
	return b, nil
}
