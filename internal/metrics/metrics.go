// Package metrics records per-stage pipeline timings on a private Prometheus
// registry that can be dumped to a node-exporter textfile after a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "recommend"

// Pipeline holds the collectors for one process.
type Pipeline struct {
	registry      *prometheus.Registry
	StageDuration *prometheus.HistogramVec
	StageErrors   *prometheus.CounterVec
	StageItems    *prometheus.GaugeVec
}

// NewPipeline creates the collectors and registers them on a fresh registry.
func NewPipeline() *Pipeline {
	p := &Pipeline{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Pipeline stage duration in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"stage", "status"},
		),
		StageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_errors_total",
				Help:      "Total pipeline stage failures",
			},
			[]string{"stage"},
		),
		StageItems: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stage_items",
				Help:      "Number of items produced by the last run of a stage",
			},
			[]string{"stage"},
		),
	}
	p.registry.MustRegister(p.StageDuration, p.StageErrors, p.StageItems)
	return p
}

// ObserveStage records the duration and outcome of a stage. Safe on a nil receiver.
func (p *Pipeline) ObserveStage(stage string, start time.Time, err error) {
	if p == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
		p.StageErrors.WithLabelValues(stage).Inc()
	}
	p.StageDuration.WithLabelValues(stage, status).Observe(time.Since(start).Seconds())
}

// SetItems records how many items a stage produced. Safe on a nil receiver.
func (p *Pipeline) SetItems(stage string, n int) {
	if p == nil {
		return
	}
	p.StageItems.WithLabelValues(stage).Set(float64(n))
}

// Registry exposes the underlying registry.
func (p *Pipeline) Registry() *prometheus.Registry {
	return p.registry
}

// WriteTextfile dumps all collectors in the text exposition format.
func (p *Pipeline) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.registry)
}
