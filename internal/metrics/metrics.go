package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for scoring, recommendations and
// score jobs. A nil *Metrics is valid and records nothing.
type Metrics struct {
	scoringDuration  prometheus.Histogram
	skippedResponses prometheus.Counter
	recommendations  *prometheus.CounterVec
	generatorLatency prometheus.Histogram
	jobs             *prometheus.CounterVec
}

var (
	defaultOnce sync.Once
	shared      *Metrics
)

// Default returns the instance registered with the global registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		shared = MustNew(prometheus.DefaultRegisterer)
	})
	return shared
}

// MustNew registers collectors with reg and panics on duplicate registration.
// Tests should pass a fresh prometheus.NewRegistry().
func MustNew(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		scoringDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellbeing",
			Subsystem: "scoring",
			Name:      "duration_seconds",
			Help:      "Time spent scoring one response set.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05},
		}),
		skippedResponses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Subsystem: "scoring",
			Name:      "skipped_responses_total",
			Help:      "Responses ignored because their question, option or weight could not be resolved.",
		}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Subsystem: "recommendations",
			Name:      "served_total",
			Help:      "Recommendation lists served, by source.",
		}, []string{"source"}),
		generatorLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellbeing",
			Subsystem: "recommendations",
			Name:      "remote_duration_seconds",
			Help:      "Latency of the remote text-generation call.",
			Buckets:   prometheus.DefBuckets,
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellbeing",
			Subsystem: "jobs",
			Name:      "finished_total",
			Help:      "Score jobs finished, by status.",
		}, []string{"status"}),
	}
	reg.MustRegister(m.scoringDuration, m.skippedResponses, m.recommendations, m.generatorLatency, m.jobs)
	return m
}

func (m *Metrics) ObserveScoring(d time.Duration, skipped int) {
	if m == nil {
		return
	}
	m.scoringDuration.Observe(d.Seconds())
	if skipped > 0 {
		m.skippedResponses.Add(float64(skipped))
	}
}

func (m *Metrics) RecommendationServed(source string) {
	if m == nil {
		return
	}
	m.recommendations.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveRemote(d time.Duration) {
	if m == nil {
		return
	}
	m.generatorLatency.Observe(d.Seconds())
}

func (m *Metrics) JobFinished(status string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(status).Inc()
}
