package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/meetglobe/internal/adapters/mq/publisher"
	"github.com/okian/meetglobe/internal/adapters/repository"
	"github.com/okian/meetglobe/internal/config"
	"github.com/okian/meetglobe/pkg/logger"
	"github.com/okian/meetglobe/pkg/metrics"

	"github.com/smartystreets/goconvey/convey"
)

const citiesYAML = `cities:
  - normalizedName: paris
    displayName: Paris
    lat: 48.8566
    lng: 2.3522
    countryCode: FR
  - normalizedName: london
    displayName: London
    lat: 51.5074
    lng: -0.1278
    countryCode: GB
`

func TestWiring(t *testing.T) {
	convey.Convey("Given a file-backed configuration", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "cities.yaml")
		convey.So(os.WriteFile(path, []byte(citiesYAML), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.StorageDriver = config.DriverFile
		cfg.StorageDir = filepath.Join(dir, "data")
		cfg.CitiesPath = path

		convey.Convey("When the dependencies are opened", func() {
			store, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			cities, closeCities, err := openCitySource(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeCities()
			pub, err := openPublisher(cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(pub, convey.ShouldHaveSameTypeAs, publisher.Noop{})

			svc := newService(cfg, store, cities, pub, logger.NewNop())
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			h := newHandler(cfg, svc, logger.NewNop())

			convey.Convey("Then a meeting round-trips through the HTTP API", func() {
				body := `{"title":"Wiring","participants":[{"name":"alice","city":"paris"},{"name":"bob","city":"london"}]}`
				req := httptest.NewRequest(http.MethodPost, "/v1/meetings", strings.NewReader(body))
				req.Header.Set("Content-Type", "application/json")
				w := httptest.NewRecorder()
				h.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)

				id := strings.TrimPrefix(w.Header().Get("Location"), "/v1/meetings/")
				w = httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/meetings/"+id+"/visualization", http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"cityName":"London"`)

				entries, err := os.ReadDir(filepath.Join(cfg.StorageDir, "meetings"))
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(entries), convey.ShouldEqual, 1)
			})

			convey.Convey("And the API documentation is mounted", func() {
				for _, target := range []string{"/openapi.yaml", "/api-docs"} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("And service stats feed the gauges", func() {
				convey.So(func() { updateServiceMetrics(ctx, svc) }, convey.ShouldNotPanic)
				convey.So(svc.GetStats(ctx)["cities"], convey.ShouldEqual, 2)
			})
		})
	})
}

func TestWiringErrors(t *testing.T) {
	convey.Convey("Given invalid dependency settings", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("Then unknown drivers and sources are rejected", func() {
			cfg.StorageDriver = "tape"
			_, err := openStore(ctx, cfg)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)

			cfg.CitiesSource = "carrier-pigeon"
			_, _, err = openCitySource(ctx, cfg)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("Then an unreachable redis fails to open", func() {
			cfg.StorageDriver = config.DriverRedis
			cfg.RedisURL = "redis://127.0.0.1:1/0"
			_, err := openStore(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then an unreachable NATS server fails to connect", func() {
			cfg.NATSURL = "nats://127.0.0.1:1"
			_, err := openPublisher(cfg, logger.NewNop())
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("Then the memory store needs nothing", func() {
			store, err := openStore(ctx, config.New())
			convey.So(err, convey.ShouldBeNil)
			_, err = store.Get(ctx, "members", "all")
			convey.So(errors.Is(err, repository.ErrNotFound), convey.ShouldBeTrue)
		})
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)

		families, err := metrics.GetRegistry().Gather()
		convey.So(err, convey.ShouldBeNil)
		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}
		convey.So(strings.Join(names, ","), convey.ShouldContainSubstring, "system_goroutine_count")
	})

	convey.Convey("Given a canceled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then the updaters return", func() {
			startSystemMetricsUpdater(ctx)
			startServiceMetricsUpdater(ctx, newService(config.New(), repository.NewMemoryStore(), nil, publisher.Noop{}, logger.NewNop()))
		})
	})
}
