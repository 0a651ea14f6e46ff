package metrics

import (
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

			Convey("Then it should be created and registered", func() {
				So(manager, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sim"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithPrometheusRegistry(registry),
			)
			manager.runsTotal.WithLabelValues(OutcomeCompleted).Inc()

			Convey("Then metric names use the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_sim_runs_total")
			})
		})

		Convey("When registering twice on the same registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then promauto panics on the duplicate", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording trials", func() {
			before := testutil.ToFloat64(globalManager.trialsCompleted)
			tiedBefore := testutil.ToFloat64(globalManager.tiedTrials)
			RecordTrials(250, 3)

			Convey("Then both counters advance", func() {
				So(testutil.ToFloat64(globalManager.trialsCompleted)-before, ShouldEqual, 250)
				So(testutil.ToFloat64(globalManager.tiedTrials)-tiedBefore, ShouldEqual, 3)
			})
		})

		Convey("When a run starts and finishes", func() {
			before := testutil.ToFloat64(globalManager.runsInFlight)
			RecordRunStarted(20, 5, 10000)

			Convey("Then run gauges reflect it", func() {
				So(testutil.ToFloat64(globalManager.runsInFlight), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.rosterSize), ShouldEqual, 20)
				So(testutil.ToFloat64(globalManager.lastRunTrials), ShouldEqual, 10000)

				UpdateRunProgress(0.5)
				So(testutil.ToFloat64(globalManager.lastRunProgress), ShouldEqual, 0.5)

				RecordRunFinished()
				So(testutil.ToFloat64(globalManager.runsInFlight), ShouldEqual, before)
			})
		})

		Convey("When recording labelled counters", func() {
			So(func() {
				RecordRun(OutcomeCompleted)
				RecordRun(OutcomeInvalid)
				RecordIntakeRejection("json")
				RecordErrorByComponent("worker", "canceled")
				RecordErrorByEndpoint("simulations", "POST", "client_error")
				RecordHTTPRequest("simulations", "POST", "200")
				RecordHTTPRequestDuration("simulations", "POST", "200", 12)
				RecordRateLimited()
			}, ShouldNotPanic)

			Convey("Then the outcome counter is split by label", func() {
				So(testutil.ToFloat64(globalManager.runsTotal.WithLabelValues(OutcomeInvalid)), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording queue, worker and system metrics", func() {
			So(func() {
				UpdateQueueCapacity(40)
				UpdateQueueSize(10)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerActiveCount(8)
				RecordWorkerError()
				RecordBatchLatency(3)
				RecordRunDuration(120)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.4)
			}, ShouldNotPanic)

			Convey("Then gauges hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 10)
				So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 8)
			})
		})

		Convey("Then the registry is exposed under the podium simulator prefix", func() {
			So(GetRegistry(), ShouldNotBeNil)
			RecordRun(OutcomeCompleted)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			So(names, ShouldContain, "podium_simulator_runs_total")
			So(names, ShouldContain, "podium_simulator_batch_latency_milliseconds")
		})
	})
}
