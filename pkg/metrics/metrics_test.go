package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "fieldtrials")
				So(manager.subsystem, ShouldEqual, "analytics")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithPrometheusRegistry(registry),
			)
			manager.uploads.WithLabelValues(OutcomeOK).Inc()

			Convey("Then metric names should carry the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "test_unit_uploads_total" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 2, 3})
			})
		})

		Convey("When bucket options receive unsorted bounds", func() {
			in := []float64{50, 5, 500}
			manager := NewManager(
				WithHistogramBuckets(in),
				WithHTTPBuckets([]float64{10, 1}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the manager keeps sorted copies", func() {
				So(manager.histogramBuckets, ShouldResemble, []float64{5, 50, 500})
				So(manager.httpBuckets, ShouldResemble, []float64{1, 10})
				So(in, ShouldResemble, []float64{50, 5, 500})
			})
		})

		Convey("When options receive empty values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "fieldtrials")
				So(manager.subsystem, ShouldEqual, "analytics")
				So(manager.histogramBuckets, ShouldResemble, DefaultLatencyBuckets)
				So(manager.httpBuckets, ShouldResemble, DefaultHTTPBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ingestion metrics", func() {
			before := testutil.ToFloat64(globalManager.rowsIngested)
			droppedBefore := testutil.ToFloat64(globalManager.rowsDropped)
			RecordRows(10, 2)
			RecordUpload(OutcomeOK)

			Convey("Then counters should advance", func() {
				So(testutil.ToFloat64(globalManager.rowsIngested)-before, ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.rowsDropped)-droppedBefore, ShouldEqual, 2)
			})
		})

		Convey("When recording session metrics", func() {
			UpdateSessionsActive(3)
			evictedBefore := testutil.ToFloat64(globalManager.sessionsEvicted)
			RecordSessionsEvicted(2)

			Convey("Then the gauge and counter should reflect it", func() {
				So(testutil.ToFloat64(globalManager.sessionsActive), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.sessionsEvicted)-evictedBefore, ShouldEqual, 2)
			})
		})

		Convey("When recording computations", func() {
			c := globalManager.computations.WithLabelValues("decision_matrix", OutcomeOK)
			before := testutil.ToFloat64(c)
			RecordComputation("decision_matrix", OutcomeOK, 0.7)

			Convey("Then the labelled counter should advance", func() {
				So(testutil.ToFloat64(c)-before, ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP and system metrics", func() {
			So(func() {
				RecordHTTPRequest("overview", "GET", "200")
				RecordHTTPRequestDuration("overview", "GET", "200", 1.5)
				RecordDomainError("empty_comparison")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("When gathering the custom registry", func() {
			RecordHTTPRequest("healthz", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then every family should use the service namespace", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
				for _, f := range families {
					So(strings.HasPrefix(f.GetName(), "fieldtrials_analytics_"), ShouldBeTrue)
				}
			})
		})
	})
}
