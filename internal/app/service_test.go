package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/meetglobe/internal/adapters/repository"
	service "github.com/okian/meetglobe/internal/app"
	"github.com/okian/meetglobe/internal/domain/geo"
	"github.com/okian/meetglobe/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

var testCities = geo.StaticSource{
	{NormalizedName: "paris", DisplayName: "Paris", Lat: 48.8566, Lng: 2.3522, CountryCode: "FR"},
	{NormalizedName: "london", DisplayName: "London", Lat: 51.5074, Lng: -0.1278, CountryCode: "GB"},
	{NormalizedName: "new york", DisplayName: "New York", Lat: 40.7128, Lng: -74.006, CountryCode: "US"},
}

var today = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

type capturePublisher struct {
	mu     sync.Mutex
	events []model.Event
	closed bool
}

func (p *capturePublisher) Publish(_ context.Context, e model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *capturePublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithCitySource(testCities),
		service.WithClock(func() time.Time { return today }),
	}
	return service.New(append(base, opts...)...)
}

func participants(pairs ...string) []model.Participant {
	out := make([]model.Participant, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Participant{Name: pairs[i], City: pairs[i+1]})
	}
	return out
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it works in memory without a city dataset", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats(context.Background())
			So(stats["started"], ShouldBeFalse)
			So(stats["cities"], ShouldEqual, 0)
		})
	})
}

func TestService_CreateMeeting(t *testing.T) {
	Convey("Given a service with a small city dataset", t, func() {
		ctx := context.Background()
		svc := newService()

		Convey("two resolvable participants give a meeting without warnings", func() {
			res, err := svc.CreateMeeting(ctx, "Team Sync", participants("alice", "paris", "bob", "LONDON"))
			So(err, ShouldBeNil)
			So(res.Meeting.ID, ShouldEqual, "team-sync-2026-10-15")
			So(len(res.Meeting.ParticipantIDs), ShouldEqual, 2)
			So(res.Warnings, ShouldBeEmpty)

			v, err := svc.GetVisualization(ctx, res.Meeting.ID)
			So(err, ShouldBeNil)
			So(v.Meeting.Title, ShouldEqual, "Team Sync")
			So(len(v.Points), ShouldEqual, 2)
			So(len(v.Arcs), ShouldEqual, 1)
		})

		Convey("the same person twice maps to one member", func() {
			_, err := svc.CreateMeeting(ctx, "One", participants("Alice", "Paris"))
			So(err, ShouldBeNil)
			_, err = svc.CreateMeeting(ctx, "Two", participants("ALICE ", "  paris"))
			So(err, ShouldBeNil)
			members, err := svc.ListMembers(ctx)
			So(err, ShouldBeNil)
			So(len(members), ShouldEqual, 1)
		})

		Convey("an unknown city is kept in the roster with a warning", func() {
			res, err := svc.CreateMeeting(ctx, "Atlantis",
				participants("alice", "paris", "bob", "london", "zed", "atlantis"))
			So(err, ShouldBeNil)
			So(len(res.Meeting.ParticipantIDs), ShouldEqual, 3)
			So(len(res.Warnings), ShouldEqual, 1)
			So(res.Warnings[0].Kind, ShouldEqual, model.WarningUnresolvedCity)
			So(res.Warnings[0].Message, ShouldContainSubstring, "Atlantis")

			v, err := svc.GetVisualization(ctx, res.Meeting.ID)
			So(err, ShouldBeNil)
			So(len(v.Points), ShouldEqual, 2)
			So(len(v.Arcs), ShouldEqual, 1)
			So(len(v.Warnings), ShouldEqual, 1)
			So(v.Warnings[0].Name, ShouldEqual, "Zed")
		})

		Convey("with resolved cities required, the unknown city is left out", func() {
			strict := newService(service.WithRequireResolvedCity(true))
			res, err := strict.CreateMeeting(ctx, "Strict",
				participants("alice", "paris", "zed", "atlantis"))
			So(err, ShouldBeNil)
			So(len(res.Meeting.ParticipantIDs), ShouldEqual, 1)
			So(len(res.Warnings), ShouldEqual, 1)
		})

		Convey("an invalid participant is skipped with a warning", func() {
			res, err := svc.CreateMeeting(ctx, "Partial", participants("alice", "paris", "   ", "london"))
			So(err, ShouldBeNil)
			So(len(res.Meeting.ParticipantIDs), ShouldEqual, 1)
			So(len(res.Warnings), ShouldEqual, 1)
			So(res.Warnings[0].Kind, ShouldEqual, model.WarningMemberFailed)
		})

		Convey("input errors abort before anything is stored", func() {
			_, err := svc.CreateMeeting(ctx, "Empty", nil)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)

			_, err = svc.CreateMeeting(ctx, "  ", participants("alice", "paris"))
			var ve *model.ValidationError
			So(errors.As(err, &ve), ShouldBeTrue)
			So(ve.Field, ShouldEqual, "title")

			_, err = svc.CreateMeeting(ctx, "Nobody", participants("", "paris", "bob", ""))
			So(errors.As(err, &ve), ShouldBeTrue)
			So(ve.Field, ShouldEqual, "participants")

			members, _ := svc.ListMembers(ctx)
			So(members, ShouldBeEmpty)
			meetings, _ := svc.ListMeetings(ctx)
			So(meetings, ShouldBeEmpty)
		})

		Convey("rosters above the limit are rejected", func() {
			small := newService(service.WithMaxParticipants(2))
			_, err := small.CreateMeeting(ctx, "Big",
				participants("a", "paris", "b", "paris", "c", "paris"))
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestService_ReadOperations(t *testing.T) {
	Convey("Given a service with one meeting", t, func() {
		ctx := context.Background()
		svc := newService()
		res, err := svc.CreateMeeting(ctx, "Standup", participants("alice", "new york", "bob", "paris"))
		So(err, ShouldBeNil)

		Convey("GetMeeting and GetMember return stored records", func() {
			mt, err := svc.GetMeeting(ctx, res.Meeting.ID)
			So(err, ShouldBeNil)
			So(mt.Title, ShouldEqual, "Standup")

			m, err := svc.GetMember(ctx, mt.ParticipantIDs[0])
			So(err, ShouldBeNil)
			So(m.City, ShouldEqual, "New York")
		})

		Convey("ResolveCity is case-insensitive and reports unknown names", func() {
			c, err := svc.ResolveCity(ctx, "  NEW YORK ")
			So(err, ShouldBeNil)
			So(c.CountryCode, ShouldEqual, "US")

			_, err = svc.ResolveCity(ctx, "Atlantis")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("unknown IDs are not found", func() {
			_, err := svc.GetVisualization(ctx, "nope-2026-10-15")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			_, err = svc.GetMember(ctx, "nope")
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
		})

		Convey("after delete the meeting is gone but members stay", func() {
			So(svc.DeleteMeeting(ctx, res.Meeting.ID), ShouldBeNil)
			_, err := svc.GetVisualization(ctx, res.Meeting.ID)
			So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			So(errors.Is(svc.DeleteMeeting(ctx, res.Meeting.ID), model.ErrNotFound), ShouldBeTrue)

			members, _ := svc.ListMembers(ctx)
			So(len(members), ShouldEqual, 2)
		})

		Convey("RefreshCities reports the dataset size", func() {
			n, err := svc.RefreshCities(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 3)
		})

		Convey("GetStats counts members and meetings", func() {
			stats := svc.GetStats(ctx)
			So(stats["members"], ShouldEqual, 2)
			So(stats["meetings"], ShouldEqual, 1)
			So(stats["cities"], ShouldEqual, 3)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service with a capturing publisher", t, func() {
		ctx := context.Background()
		pub := &capturePublisher{}
		store := repository.NewMemoryStore()
		svc := newService(service.WithPublisher(pub), service.WithStore(store))
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.GetStats(ctx)["started"], ShouldBeTrue)

		Convey("create and delete events are published before Stop returns", func() {
			res, err := svc.CreateMeeting(ctx, "Retro", participants("alice", "paris"))
			So(err, ShouldBeNil)
			So(svc.DeleteMeeting(ctx, res.Meeting.ID), ShouldBeNil)

			svc.Stop()
			So(pub.types(), ShouldResemble, []model.EventType{model.EventMeetingCreated, model.EventMeetingDeleted})
			So(pub.events[0].MeetingID, ShouldEqual, res.Meeting.ID)
			So(pub.events[0].Participants, ShouldEqual, 1)
			So(pub.closed, ShouldBeTrue)

			_, err = store.Get(ctx, "members", "all")
			So(errors.Is(err, repository.ErrClosed), ShouldBeTrue)
		})

		Convey("Stop is idempotent", func() {
			svc.Stop()
			svc.Stop()
			So(svc.GetStats(ctx)["started"], ShouldBeFalse)
		})
	})
}
