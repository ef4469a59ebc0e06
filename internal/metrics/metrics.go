// Package metrics records per-run counters and durations in a private
// Prometheus registry and writes them next to the run's artifacts.
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newshub"

// Recorder holds the collectors for one run.
type Recorder struct {
	registry *prometheus.Registry

	extractionAttempts *prometheus.CounterVec
	extractionResults  *prometheus.CounterVec
	generationCalls    *prometheus.CounterVec
	generationLatency  *prometheus.HistogramVec
	phaseDuration      *prometheus.GaugeVec
	phaseState         *prometheus.GaugeVec
	placeholders       *prometheus.CounterVec
}

// New builds a Recorder backed by a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		// Labels: tier, outcome (success, insufficient, transient-error, deterministic-error)
		extractionAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "attempts_total",
			Help:      "Extraction attempts by tier and outcome",
		}, []string{"tier", "outcome"}),
		// Labels: family (video, page), result (success, empty)
		extractionResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "results_total",
			Help:      "Completed extractions by URL family and result",
		}, []string{"family", "result"}),
		generationCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "calls_total",
			Help:      "Generation calls by provider and result",
		}, []string{"provider", "result"}),
		generationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "latency_seconds",
			Help:      "Generation call latency in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 40, 80, 160, 320},
		}, []string{"provider"}),
		phaseDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "phase",
			Name:      "duration_seconds",
			Help:      "Wall time spent in each phase",
		}, []string{"phase", "state"}),
		phaseState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "phase",
			Name:      "state",
			Help:      "1 for the final state each phase reached in this run",
		}, []string{"phase", "state"}),
		placeholders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "placeholders_total",
			Help:      "Placeholder entries emitted in place of generated content",
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry for tests and exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ExtractionAttempt counts one tier attempt.
func (r *Recorder) ExtractionAttempt(tier, outcome string) {
	if r == nil {
		return
	}
	r.extractionAttempts.WithLabelValues(tier, outcome).Inc()
}

// ExtractionResult counts one completed extraction.
func (r *Recorder) ExtractionResult(family string, ok bool) {
	if r == nil {
		return
	}
	result := "success"
	if !ok {
		result = "empty"
	}
	r.extractionResults.WithLabelValues(family, result).Inc()
}

// GenerationCall counts one generation call and its latency.
func (r *Recorder) GenerationCall(provider string, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "error"
	}
	r.generationCalls.WithLabelValues(provider, result).Inc()
	r.generationLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// Phase records the final state and duration of a phase.
func (r *Recorder) Phase(phase, state string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.phaseDuration.WithLabelValues(phase, state).Set(elapsed.Seconds())
	r.phaseState.WithLabelValues(phase, state).Set(1)
}

// Placeholders counts placeholder entries emitted by a stage.
func (r *Recorder) Placeholders(stage string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.placeholders.WithLabelValues(stage).Add(float64(n))
}

// WriteFile writes the registry in the Prometheus text format to path.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
