// Package metrics records loader activity in a private Prometheus registry.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.trai.ch/xs/internal/core/domain"
	"go.trai.ch/xs/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LoadMetrics = (*Recorder)(nil)

// Recorder holds the Prometheus collectors of the loader.
type Recorder struct {
	statesTotal     *prometheus.CounterVec
	loadsTotal      *prometheus.CounterVec
	loadDuration    *prometheus.HistogramVec
	persistFailures prometheus.Counter

	registry *prometheus.Registry
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()

	r := &Recorder{
		statesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xs_loader_states_total",
				Help: "Total number of fetch orchestrator states entered",
			},
			[]string{"state"},
		),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xs_loads_total",
				Help: "Total number of finished loads by code origin and result",
			},
			[]string{"origin", "result"},
		),
		loadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xs_load_duration_seconds",
				Help:    "Load latency in seconds",
				Buckets: []float64{0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"origin"},
		),
		persistFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "xs_cache_persist_failures_total",
				Help: "Total number of absorbed cache write failures",
			},
		),
		registry: registry,
	}

	registry.MustRegister(r.statesTotal, r.loadsTotal, r.loadDuration, r.persistFailures)
	return r
}

// ObserveState counts a state entered by the fetch orchestrator.
func (r *Recorder) ObserveState(state domain.LoadState) {
	r.statesTotal.WithLabelValues(state.String()).Inc()
}

// ObserveLoad records a finished load.
func (r *Recorder) ObserveLoad(origin domain.Origin, kind string, elapsed time.Duration) {
	label := string(origin)
	if label == "" {
		label = "none"
	}
	r.loadsTotal.WithLabelValues(label, kind).Inc()
	r.loadDuration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// ObservePersistFailure counts an absorbed cache write failure.
func (r *Recorder) ObservePersistFailure() {
	r.persistFailures.Inc()
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Write dumps every metric in the Prometheus text exposition format.
func (r *Recorder) Write(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return zerr.Wrap(err, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return zerr.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}
