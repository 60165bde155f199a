package citydata

import (
	"context"
	"fmt"

	"github.com/okian/meetglobe/internal/domain/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectCities = `SELECT normalized_name, display_name, lat, lng, COALESCE(country_code, '')
FROM cities ORDER BY normalized_name`

// Querier is the subset of pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads the dataset from a cities table populated by the
// offline geocoding job.
type PostgresSource struct {
	db Querier
}

// NewPostgresSource wraps an existing pool or connection.
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db}
}

// OpenPostgresSource connects to dsn. The caller closes the returned pool.
func OpenPostgresSource(ctx context.Context, dsn string) (*PostgresSource, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresSource(pool), pool, nil
}

// Load implements geo.CitySource.
func (s *PostgresSource) Load(ctx context.Context) ([]model.City, error) {
	rows, err := s.db.Query(ctx, selectCities)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryDataset, err)
	}
	cities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.City, error) {
		var c model.City
		err := row.Scan(&c.NormalizedName, &c.DisplayName, &c.Lat, &c.Lng, &c.CountryCode)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryDataset, err)
	}
	return cities, nil
}
