package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the statement pipeline. A nil registerer creates unregistered collectors.
type Metrics struct {
	results       *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	total         prometheus.Histogram
	cacheHits     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		results: f.NewCounterVec(prometheus.CounterOpts{
			Name: "statement_pipeline_results_total",
			Help: "Pipeline results by outcome code",
		}, []string{"code"}),
		stageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "statement_pipeline_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"stage"}),
		total: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "statement_pipeline_duration_seconds",
			Help:    "End-to-end processing time per statement",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "statement_pipeline_cache_hits_total",
			Help: "Statements answered from the result cache",
		}),
	}
}

func (m *Metrics) observeStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) observeResult(r PipelineResult, d time.Duration) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(r.Code()).Inc()
	m.total.Observe(d.Seconds())
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
