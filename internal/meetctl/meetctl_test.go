package meetctl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/meetglobe/internal/adapters/http/api"
	service "github.com/okian/meetglobe/internal/app"
	"github.com/okian/meetglobe/internal/domain/geo"
	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/internal/meetctl"
	"github.com/okian/meetglobe/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	var cities geo.StaticSource
	for _, name := range []string{"Paris", "London", "New York", "Tokyo", "Berlin", "Sydney",
		"Sao Paulo", "Lagos", "Mumbai", "Toronto", "Cairo", "Singapore"} {
		cities = append(cities, model.City{
			NormalizedName: strings.ToLower(name),
			DisplayName:    name,
			Lat:            float64(len(name)),
			Lng:            float64(len(name)) * 2,
		})
	}
	svc := service.New(
		service.WithCitySource(cities),
		service.WithClock(func() time.Time { return time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC) }),
	)
	srv := httptest.NewServer(api.NewServer(svc, svc).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	Convey("Given a client against a running server", t, func() {
		ctx := context.Background()
		srv := newServer(t)
		client := meetctl.NewClient(srv.URL+"/", 5*time.Second)

		So(client.Health(ctx), ShouldBeNil)

		Convey("a roster creates a meeting that can be visualized and deleted", func() {
			res, err := client.CreateFromRoster(ctx, "Planning", "Alice, Paris\nBob, Tokyo\nbroken line\n")
			So(err, ShouldBeNil)
			So(res.Meeting.ID, ShouldEqual, "planning-2026-10-15")
			So(len(res.Warnings), ShouldEqual, 1)
			So(res.Warnings[0].Kind, ShouldEqual, model.WarningInvalidLine)

			v, err := client.Visualization(ctx, res.Meeting.ID)
			So(err, ShouldBeNil)
			So(len(v.Points), ShouldEqual, 2)
			So(len(v.Arcs), ShouldEqual, 1)

			So(client.DeleteMeeting(ctx, res.Meeting.ID), ShouldBeNil)
			_, err = client.Visualization(ctx, res.Meeting.ID)
			var apiErr *meetctl.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusNotFound)
			So(apiErr.Code, ShouldEqual, "not_found")
		})

		Convey("validation errors carry the field", func() {
			_, err := client.CreateMeeting(ctx, "", []model.Participant{{Name: "a", City: "Paris"}})
			var apiErr *meetctl.APIError
			So(errors.As(err, &apiErr), ShouldBeTrue)
			So(apiErr.Status, ShouldEqual, http.StatusBadRequest)
			So(apiErr.Field, ShouldEqual, "title")
		})

		Convey("non-JSON failures are reported as unexpected", func() {
			plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			}))
			defer plain.Close()
			err := meetctl.NewClient(plain.URL, time.Second).Health(ctx)
			So(errors.Is(err, meetctl.ErrUnexpected), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a load run against a running server", t, func() {
		srv := newServer(t)
		cfg := &meetctl.Config{
			BaseURL:  srv.URL,
			Meetings: 12,
			Size:     5,
			Workers:  4,
			Timeout:  5 * time.Second,
			Seed:     7,
			Cleanup:  true,
		}

		stats, err := meetctl.Run(context.Background(), cfg, logger.NewNop())
		So(err, ShouldBeNil)

		Convey("every meeting is created, verified and deleted", func() {
			So(stats.MeetingsCreated, ShouldEqual, 12)
			So(stats.MeetingsFailed, ShouldEqual, 0)
			So(stats.Visualizations, ShouldEqual, 12)
			So(stats.MeetingsDeleted, ShouldEqual, 12)
			So(stats.Points, ShouldBeLessThanOrEqualTo, 60)

			var buf bytes.Buffer
			meetctl.WriteStats(&buf, stats)
			So(buf.String(), ShouldContainSubstring, "meetings created:  12")
		})

		Convey("invalid settings are rejected", func() {
			_, err := meetctl.Run(context.Background(), &meetctl.Config{BaseURL: srv.URL}, logger.NewNop())
			So(errors.Is(err, meetctl.ErrUsage), ShouldBeTrue)
		})
	})
}

func TestMain_Commands(t *testing.T) {
	Convey("Given the command line entry point", t, func() {
		ctx := context.Background()
		srv := newServer(t)
		var stdout, stderr bytes.Buffer

		Convey("create reads the roster from stdin and prints the result", func() {
			code := meetctl.Main(ctx, []string{"create", "-url", srv.URL, "-title", "Offsite"},
				strings.NewReader("Alice, Paris\nBob, London\n"), &stdout, &stderr)
			So(code, ShouldEqual, 0)
			var res service.CreateResult
			So(json.Unmarshal(stdout.Bytes(), &res), ShouldBeNil)
			So(res.Meeting.ID, ShouldEqual, "offsite-2026-10-15")

			stdout.Reset()
			code = meetctl.Main(ctx, []string{"viz", "-url", srv.URL, "-id", res.Meeting.ID}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 0)
			var v model.Visualization
			So(json.Unmarshal(stdout.Bytes(), &v), ShouldBeNil)
			So(len(v.Arcs), ShouldEqual, 1)

			code = meetctl.Main(ctx, []string{"delete", "-url", srv.URL, "-id", res.Meeting.ID}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 0)
		})

		Convey("server errors exit with 1", func() {
			code := meetctl.Main(ctx, []string{"viz", "-url", srv.URL, "-id", "missing-2026-10-15"}, nil, &stdout, &stderr)
			So(code, ShouldEqual, 1)
			So(stderr.String(), ShouldContainSubstring, "not_found")
		})

		Convey("usage errors exit with 2", func() {
			So(meetctl.Main(ctx, nil, nil, &stdout, &stderr), ShouldEqual, 2)
			So(meetctl.Main(ctx, []string{"bogus"}, nil, &stdout, &stderr), ShouldEqual, 2)
			So(meetctl.Main(ctx, []string{"create", "-url", srv.URL}, nil, &stdout, &stderr), ShouldEqual, 2)
			So(meetctl.Main(ctx, []string{"viz", "-nope"}, nil, &stdout, &stderr), ShouldEqual, 1)
			So(stderr.String(), ShouldContainSubstring, "usage")
		})
	})
}
