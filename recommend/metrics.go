// ABOUTME: Prometheus instrumentation for recommendation runs
// ABOUTME: Counts batch outcomes, discarded provider results and run latency

package recommend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects recommendation run statistics. A nil *Metrics records nothing.
type Metrics struct {
	runs        prometheus.Counter
	batches     *prometheus.CounterVec
	discarded   *prometheus.CounterVec
	candidates  prometheus.Histogram
	runDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when reg is non-nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "playlist_explorer",
			Subsystem: "recommend",
			Name:      "runs_total",
			Help:      "Recommendation runs started.",
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "playlist_explorer",
			Subsystem: "recommend",
			Name:      "batches_total",
			Help:      "Seed batches submitted, by outcome.",
		}, []string{"outcome"}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "playlist_explorer",
			Subsystem: "recommend",
			Name:      "discarded_total",
			Help:      "Provider results dropped during aggregation, by reason.",
		}, []string{"reason"}),
		candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "playlist_explorer",
			Subsystem: "recommend",
			Name:      "candidates",
			Help:      "Distinct candidates produced per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "playlist_explorer",
			Subsystem: "recommend",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a recommendation run.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.runs, m.batches, m.discarded, m.candidates, m.runDuration)
	}

	return m
}

func (m *Metrics) observeRun(res *Result, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.runs.Inc()
	m.batches.WithLabelValues("ok").Add(float64(len(res.Batches) - len(res.Failed)))
	m.batches.WithLabelValues("failed").Add(float64(len(res.Failed)))
	m.discarded.WithLabelValues("unknown").Add(float64(res.Unknown))
	m.discarded.WithLabelValues("pinned").Add(float64(res.AlreadyPinned))
	m.candidates.Observe(float64(len(res.Candidates)))
	m.runDuration.Observe(elapsed.Seconds())
}
