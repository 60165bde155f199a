// Package visualize turns a meeting into points and the complete graph of
// arcs between them.
package visualize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/pkg/logger"
	"github.com/okian/meetglobe/pkg/metrics"
)

const defaultArcWarnThreshold = 200

// Members looks up members by ID, preserving order and omitting unknown IDs.
type Members interface {
	GetByIDs(ctx context.Context, ids []string) ([]model.Member, error)
}

// Cities resolves a city name to coordinates.
type Cities interface {
	Resolve(ctx context.Context, name string) (model.Coordinates, error)
}

// Engine computes visualizations on demand. Results are never cached.
type Engine struct {
	members Members
	cities  Cities
	logger  logger.Logger

	arcWarnThreshold int
}

// NewEngine builds an engine over the given lookups.
func NewEngine(members Members, cities Cities, opts ...Option) *Engine {
	e := &Engine{
		members:          members,
		cities:           cities,
		logger:           logger.NewNop(),
		arcWarnThreshold: defaultArcWarnThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute places each resolvable participant at its city and connects every
// pair of points once. Participants whose member is missing or whose city
// is unknown are left out and reported as warnings.
func (e *Engine) Compute(ctx context.Context, m model.Meeting) (model.Visualization, error) {
	start := time.Now()

	members, err := e.members.GetByIDs(ctx, m.ParticipantIDs)
	if err != nil {
		return model.Visualization{}, fmt.Errorf("load participants: %w", err)
	}

	v := model.Visualization{
		Meeting:  m.Summary(),
		Points:   make([]model.Point, 0, len(members)),
		Warnings: []model.Warning{},
	}

	found := make(map[string]struct{}, len(members))
	for _, mem := range members {
		found[mem.ID] = struct{}{}
	}
	warned := make(map[string]struct{})
	for _, id := range m.ParticipantIDs {
		if _, ok := found[id]; ok {
			continue
		}
		if _, dup := warned[id]; dup {
			continue
		}
		warned[id] = struct{}{}
		metrics.RecordMissingMember()
		v.Warnings = append(v.Warnings, model.MissingMember(id))
	}

	for _, mem := range members {
		c, err := e.cities.Resolve(ctx, mem.City)
		if errors.Is(err, model.ErrNotFound) {
			if _, dup := warned[mem.ID]; !dup {
				warned[mem.ID] = struct{}{}
				metrics.RecordUnresolvedCity()
				v.Warnings = append(v.Warnings, model.UnresolvedCity(mem.ID, mem.Name, mem.City))
			}
			continue
		}
		if err != nil {
			return model.Visualization{}, fmt.Errorf("resolve city %q: %w", mem.City, err)
		}
		v.Points = append(v.Points, model.Point{
			MemberID:   mem.ID,
			MemberName: mem.Name,
			CityName:   mem.City,
			Lat:        c.Lat,
			Lng:        c.Lng,
		})
	}

	v.Arcs = Arcs(v.Points)

	n := len(v.Points)
	if e.arcWarnThreshold > 0 && n > e.arcWarnThreshold {
		e.logger.Warn(ctx, "large meeting produces quadratic arc count",
			logger.String("meeting", m.ID),
			logger.Int("points", n),
			logger.Int("arcs", len(v.Arcs)))
	}
	metrics.RecordVisualization(n, len(v.Arcs), float64(time.Since(start).Microseconds())/1000.0)
	return v, nil
}

// Arcs returns one arc per unordered pair of points, i < j.
func Arcs(points []model.Point) []model.Arc {
	n := len(points)
	arcs := make([]model.Arc, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			arcs = append(arcs, model.Arc{
				StartLat: points[i].Lat,
				StartLng: points[i].Lng,
				EndLat:   points[j].Lat,
				EndLng:   points[j].Lng,
			})
		}
	}
	return arcs
}
