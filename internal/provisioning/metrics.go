package provisioning

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-stage duration and outcome for one run. The registry
// is private to the run and written out with WriteToTextfile for the
// node-exporter textfile collector.
type Metrics struct {
	registry      *prometheus.Registry
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

// NewMetrics creates the stage metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "akslab",
				Subsystem: "pipeline",
				Name:      "stage_total",
				Help:      "Number of pipeline stages run by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "akslab",
				Subsystem: "pipeline",
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 13), // 1s to ~68min
			},
			[]string{"stage"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "akslab",
				Subsystem: "pipeline",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the pipeline last finished",
			},
		),
	}
	m.registry.MustRegister(m.stageTotal, m.stageDuration, m.lastRun)
	return m
}

// ObserveStage records one finished stage. It is a no-op on a nil Metrics.
func (m *Metrics) ObserveStage(stage string, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageTotal.WithLabelValues(stage, outcome).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Finish stamps the end of the run.
func (m *Metrics) Finish(now time.Time) {
	if m == nil {
		return
	}
	m.lastRun.Set(float64(now.Unix()))
}

// WriteToTextfile writes every metric in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
