package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/meetglobe/internal/adapters/citydata"
	"github.com/okian/meetglobe/internal/adapters/http/api"
	"github.com/okian/meetglobe/internal/adapters/http/swagger"
	"github.com/okian/meetglobe/internal/adapters/mq/publisher"
	"github.com/okian/meetglobe/internal/adapters/repository"
	app "github.com/okian/meetglobe/internal/app"
	"github.com/okian/meetglobe/internal/config"
	"github.com/okian/meetglobe/internal/domain/geo"
	"github.com/okian/meetglobe/pkg/logger"
)

// openStore opens the record store selected by cfg.StorageDriver and wraps
// it with operation metrics.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	var (
		store repository.Store
		err   error
	)
	switch cfg.StorageDriver {
	case config.DriverMemory:
		store = repository.NewMemoryStore()
	case config.DriverFile:
		store, err = repository.NewFileStore(cfg.StorageDir)
	case config.DriverRedis:
		store, err = repository.NewRedisStore(ctx, cfg.RedisURL, repository.WithKeyPrefix(cfg.RedisPrefix))
	case config.DriverPostgres:
		store, err = repository.NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("%w: unknown storage_driver %q", config.ErrInvalidConfig, cfg.StorageDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageDriver, err)
	}
	return repository.Instrument(store, cfg.StorageDriver), nil
}

// openCitySource returns the city dataset selected by cfg.CitiesSource and
// a function releasing what it holds open.
func openCitySource(ctx context.Context, cfg *config.Config) (geo.CitySource, func(), error) {
	switch cfg.CitiesSource {
	case config.SourceFile:
		return citydata.NewFileSource(cfg.CitiesPath), func() {}, nil
	case config.SourcePostgres:
		src, pool, err := citydata.OpenPostgresSource(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres city source: %w", err)
		}
		return src, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown cities_source %q", config.ErrInvalidConfig, cfg.CitiesSource)
	}
}

// openPublisher connects to NATS when a URL is configured and otherwise
// discards lifecycle events.
func openPublisher(cfg *config.Config, log logger.Logger) (publisher.Publisher, error) {
	if cfg.NATSURL == "" {
		return publisher.Noop{}, nil
	}
	p, err := publisher.DialNATS(cfg.NATSURL, cfg.EventsSubjectPrefix, log)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// newService builds the service from cfg and its opened dependencies.
func newService(cfg *config.Config, store repository.Store, cities geo.CitySource, pub publisher.Publisher, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithCitySource(cities),
		app.WithPublisher(pub),
		app.WithMaxParticipants(cfg.MaxParticipants),
		app.WithMaxTitleLength(cfg.MaxTitleLength),
		app.WithArcWarnThreshold(cfg.ArcWarnThreshold),
		app.WithRequireResolvedCity(cfg.RequireResolvedCity),
		app.WithPublishWorkers(cfg.PublishWorkers),
		app.WithEventQueueSize(cfg.EventQueueSize),
	)
}

// newHandler mounts the business API and the API documentation.
func newHandler(cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	return api.NewServer(svc, svc,
		api.WithLogger(log.Named("api")),
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithRoutes(swagger.Register),
	).Handler()
}
