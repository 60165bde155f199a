package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When a manager is created with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.membersCreated.Inc()

			Convey("Then its collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_members_created_total"], ShouldBeTrue)
			})
		})

		Convey("When a second manager registers on the same registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then registration panics on duplicates", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		So(GetRegistry(), ShouldNotBeNil)

		Convey("When domain counters are recorded", func() {
			before := testutil.ToFloat64(globalManager.membersCreated)
			RecordMemberCreated()
			RecordMemberDedupHit()
			RecordMemberMigrated(3)
			RecordMeetingCreated()
			RecordMeetingDeleted()
			RecordMeetingCollision()
			RecordUnresolvedCity()
			RecordMissingMember()
			RecordCorruptRecord("meetings")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.membersCreated), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.corruptRecords.WithLabelValues("meetings")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When gauges and histograms are recorded", func() {
			UpdateCityCacheSize(42)
			RecordCityCacheLoad(true, 3)
			RecordCityCacheLoad(false, 1)
			RecordVisualization(4, 6, 0.5)
			RecordStoreOperation("memory", "get", 0.1, nil)
			RecordStoreOperation("memory", "get", 0.1, errors.New("boom"))
			RecordEventPublished("meetings.created", nil)
			RecordHTTPRequest("meetings", "GET", "200")
			RecordHTTPRequestDuration("meetings", "GET", "200", 1.5)
			RecordErrorByType("not_found", "medium")
			RecordErrorByEndpoint("meetings", "GET", "not_found")
			UpdateSystemMemoryUsage(1024)
			UpdateSystemGoroutineCount(8)
			RecordSystemGCPauseTime(0.2)

			Convey("Then the values are observable", func() {
				So(testutil.ToFloat64(globalManager.cityCacheSize), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.cityCacheLoads.WithLabelValues("error")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("memory", "get")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}
