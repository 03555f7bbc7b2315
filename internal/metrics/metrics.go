// Package metrics exposes Prometheus instruments for pipeline runs.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "momentflow"

type Metrics struct {
	FetchedRecords      *prometheus.CounterVec
	FetchFailures       *prometheus.CounterVec
	AnnotationFallbacks prometheus.Counter
	StoredMoments       prometheus.Counter
	Runs                *prometheus.CounterVec
	RunDuration         prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetched_records_total",
			Help:      "Content records returned by each source.",
		}, []string{"source"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Source fetches that failed after retries.",
		}, []string{"source"}),
		AnnotationFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotation_fallbacks_total",
			Help:      "Records that received the fallback sentiment.",
		}),
		StoredMoments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stored_moments_total",
			Help:      "Ranked moments written to the store.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
	}
	reg.MustRegister(m.FetchedRecords, m.FetchFailures, m.AnnotationFallbacks,
		m.StoredMoments, m.Runs, m.RunDuration)
	return m
}

func (m *Metrics) ObserveFetch(source string, count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.FetchFailures.WithLabelValues(source).Inc()
		return
	}
	m.FetchedRecords.WithLabelValues(source).Add(float64(count))
}

func (m *Metrics) AnnotationFallback() {
	if m == nil {
		return
	}
	m.AnnotationFallbacks.Inc()
}

func (m *Metrics) Stored(count int) {
	if m == nil {
		return
	}
	m.StoredMoments.Add(float64(count))
}

func (m *Metrics) ObserveRun(d time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
