// Package geo resolves normalized city names to coordinates.
package geo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/pkg/logger"
	"github.com/okian/meetglobe/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

// CitySource supplies the already-geocoded city dataset.
type CitySource interface {
	Load(ctx context.Context) ([]model.City, error)
}

// StaticSource serves a fixed slice of cities.
type StaticSource []model.City

// Load returns a copy of the slice.
func (s StaticSource) Load(_ context.Context) ([]model.City, error) {
	out := make([]model.City, len(s))
	copy(out, s)
	return out, nil
}

// Resolver is a read-only cache over a CitySource. The dataset is loaded on
// first use; concurrent first callers share a single load. A failed load is
// not cached, so the next caller retries.
type Resolver struct {
	source CitySource
	logger logger.Logger
	clock  func() time.Time

	group singleflight.Group

	mu     sync.RWMutex
	cities map[string]model.City
	loaded bool
}

// NewResolver builds a resolver over source. Nothing is loaded until the
// first lookup or an explicit Refresh.
func NewResolver(source CitySource, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		logger: logger.NewNop(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the coordinates for name. Unknown names yield
// ErrCityNotFound; no placeholder coordinate is ever returned.
func (r *Resolver) Resolve(ctx context.Context, name string) (model.Coordinates, error) {
	c, err := r.Lookup(ctx, name)
	if err != nil {
		return model.Coordinates{}, err
	}
	return c.Coordinates(), nil
}

// Lookup returns the full city record for name.
func (r *Resolver) Lookup(ctx context.Context, name string) (model.City, error) {
	if err := r.ensure(ctx); err != nil {
		return model.City{}, err
	}
	key := model.CityKey(name)

	r.mu.RLock()
	c, ok := r.cities[key]
	r.mu.RUnlock()
	if !ok {
		metrics.RecordUnresolvedCity()
		return model.City{}, fmt.Errorf("%w: %q", ErrCityNotFound, name)
	}
	return c, nil
}

// Exists reports whether name resolves. A dataset that cannot be loaded
// resolves nothing.
func (r *Resolver) Exists(ctx context.Context, name string) bool {
	_, err := r.Lookup(ctx, name)
	return err == nil
}

// Size returns the number of cached cities, loading the dataset if needed.
func (r *Resolver) Size(ctx context.Context) int {
	if err := r.ensure(ctx); err != nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cities)
}

// Refresh reloads the dataset and swaps it in. On failure the previous
// cache stays in place.
func (r *Resolver) Refresh(ctx context.Context) error {
	_, err, _ := r.group.Do("load", func() (any, error) {
		return nil, r.reload(ctx)
	})
	return err
}

func (r *Resolver) ensure(ctx context.Context) error {
	r.mu.RLock()
	loaded := r.loaded
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := r.group.Do("load", func() (any, error) {
		r.mu.RLock()
		loaded := r.loaded
		r.mu.RUnlock()
		if loaded {
			return nil, nil
		}
		return nil, r.reload(ctx)
	})
	return err
}

func (r *Resolver) reload(ctx context.Context) error {
	start := r.clock()
	list, err := r.source.Load(ctx)
	elapsed := float64(r.clock().Sub(start).Microseconds()) / 1000
	if err != nil {
		metrics.RecordCityCacheLoad(false, elapsed)
		r.logger.Error(ctx, "city dataset load failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrLoadCities, err)
	}

	cities := make(map[string]model.City, len(list))
	for _, c := range list {
		key := c.Key()
		if key == "" {
			r.logger.Warn(ctx, "skipping city without a name", logger.Any("city", c))
			continue
		}
		if c.DisplayName == "" {
			c.DisplayName = c.NormalizedName
		}
		if err := model.Validate(c); err != nil {
			r.logger.Warn(ctx, "skipping invalid city", logger.String("city", key), logger.Error(err))
			continue
		}
		if _, dup := cities[key]; dup {
			r.logger.Warn(ctx, "duplicate city key; keeping first entry", logger.String("city", key))
			continue
		}
		c.NormalizedName = key
		cities[key] = c
	}

	r.mu.Lock()
	r.cities = cities
	r.loaded = true
	r.mu.Unlock()

	metrics.RecordCityCacheLoad(true, elapsed)
	metrics.UpdateCityCacheSize(len(cities))
	r.logger.Info(ctx, "city dataset loaded",
		logger.Int("cities", len(cities)),
		logger.Int("skipped", len(list)-len(cities)),
	)
	return nil
}
