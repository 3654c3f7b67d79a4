package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/limaJavier/sectionscheduler/pkg/model"
)

const scoreScale = 1_000_000 // Scores are accumulated as integer millionths

// Snapshot aggregates every run observed so far
type Snapshot struct {
	Runs              uint64
	ValidRuns         uint64
	SuccessRatio      float64
	AverageScore      float64
	AverageDurationMs float64
	UnassignedTotal   uint64
	GeneratedAt       time.Time
}

// Recorder instruments schedule generation on a private Prometheus registry. A nil Recorder ignores every call.
type Recorder struct {
	registry     *prometheus.Registry
	runsTotal    *prometheus.CounterVec
	runDuration  prometheus.Histogram
	runScore     prometheus.Histogram
	arrangements prometheus.Histogram
	unassigned   prometheus.Gauge

	runCount        atomic.Uint64
	validCount      atomic.Uint64
	scoreTotal      atomic.Uint64
	durationTotal   atomic.Uint64
	unassignedTotal atomic.Uint64
}

var _ model.Recorder = (*Recorder)(nil)

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generations_total",
		Help: "Total number of schedule generation runs",
	}, []string{"result"})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Duration of schedule generation runs in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	runScore := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_score",
		Help:    "Preference satisfaction score of generated schedules",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	arrangements := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_generation_arrangements",
		Help:    "Candidate arrangements enumerated from the constraint tree",
		Buckets: []float64{0, 1, 10, 100, 1000},
	})

	unassigned := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_unassigned_sections",
		Help: "Sections left unassigned by the latest run",
	})

	registry.MustRegister(runsTotal, runDuration, runScore, arrangements, unassigned)

	return &Recorder{
		registry:     registry,
		runsTotal:    runsTotal,
		runDuration:  runDuration,
		runScore:     runScore,
		arrangements: arrangements,
		unassigned:   unassigned,
	}
}

func (recorder *Recorder) Registry() *prometheus.Registry {
	if recorder == nil {
		return nil
	}
	return recorder.registry
}

func (recorder *Recorder) ObserveGeneration(report model.GenerationReport, score float64) {
	if recorder == nil {
		return
	}

	result := "invalid"
	if report.Valid {
		result = "valid"
		recorder.validCount.Add(1)
	}
	recorder.runsTotal.WithLabelValues(result).Inc()
	recorder.runDuration.Observe(report.Duration.Seconds())
	recorder.runScore.Observe(score)
	recorder.arrangements.Observe(float64(report.Arrangements))
	recorder.unassigned.Set(float64(len(report.Unassigned)))

	recorder.runCount.Add(1)
	recorder.scoreTotal.Add(uint64(score * scoreScale))
	recorder.durationTotal.Add(uint64(report.Duration.Nanoseconds()))
	recorder.unassignedTotal.Add(uint64(len(report.Unassigned)))
}

func (recorder *Recorder) Snapshot() Snapshot {
	if recorder == nil {
		return Snapshot{}
	}
	runs := recorder.runCount.Load()
	valid := recorder.validCount.Load()

	snapshot := Snapshot{
		Runs:            runs,
		ValidRuns:       valid,
		UnassignedTotal: recorder.unassignedTotal.Load(),
		GeneratedAt:     time.Now().UTC(),
	}
	if runs > 0 {
		snapshot.SuccessRatio = float64(valid) / float64(runs)
		snapshot.AverageScore = float64(recorder.scoreTotal.Load()) / scoreScale / float64(runs)
		snapshot.AverageDurationMs = float64(recorder.durationTotal.Load()) / float64(runs) / float64(time.Millisecond)
	}
	return snapshot
}
