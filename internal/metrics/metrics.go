// internal/metrics/metrics.go
// Package: metrics
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mwiater/benchrunner/internal/model"
)

const namespace = "benchrunner"

// Recorder collects run metrics in its own registry so that several runs
// in one process never collide.
type Recorder struct {
	registry         *prometheus.Registry
	variants         *prometheus.CounterVec
	iterations       prometheus.Counter
	retries          prometheus.Counter
	iterationSeconds prometheus.Histogram
	runSeconds       prometheus.Gauge
}

// NewRecorder returns a recorder with all run metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		variants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "variants_total",
			Help:      "Finished variants by terminal status",
		}, []string{"status"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Isolated iterations launched, warmup included",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Measurements discarded because rstdev exceeded the retry threshold",
		}),
		iterationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "iteration_duration_seconds",
			Help:      "Wall time of an isolated iteration including process start",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
	}
	r.registry.MustRegister(r.variants, r.iterations, r.retries, r.iterationSeconds, r.runSeconds)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// VariantFinished counts a variant that reached status.
func (r *Recorder) VariantFinished(status model.Status) {
	r.variants.WithLabelValues(string(status)).Inc()
}

// IterationFinished records one launched iteration.
func (r *Recorder) IterationFinished(d time.Duration) {
	r.iterations.Inc()
	r.iterationSeconds.Observe(d.Seconds())
}

// Retried counts one discarded measurement.
func (r *Recorder) Retried() { r.retries.Inc() }

// RunFinished records the duration of the whole run.
func (r *Recorder) RunFinished(d time.Duration) { r.runSeconds.Set(d.Seconds()) }

// WriteTextfile writes the metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
