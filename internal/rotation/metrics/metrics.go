// Package metrics records rotation outcomes in Prometheus format. The CLI
// is one-shot, so metrics are written as a textfile for node_exporter's
// textfile collector rather than served over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/systmms/keyrotate/internal/rotation"
)

// Recorder holds the rotation metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	startedTotal   prometheus.Counter
	completedTotal *prometheus.CounterVec
	rollbackTotal  prometheus.Counter
	duration       prometheus.Histogram
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		startedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "keyrotate_rotation_started_total",
			Help: "Total number of rotation runs started",
		}),
		completedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "keyrotate_rotation_completed_total",
			Help: "Total number of rotation runs completed",
		}, []string{"status"}),
		rollbackTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "keyrotate_rollback_total",
			Help: "Total number of rotation runs rolled back",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "keyrotate_rotation_duration_seconds",
			Help:    "Duration of rotation runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		}),
	}
}

// RecordStarted records a rotation start event.
func (r *Recorder) RecordStarted() {
	r.startedTotal.Inc()
}

// RecordResult records a finished run's status and duration.
func (r *Recorder) RecordResult(res *rotation.Result) {
	r.completedTotal.WithLabelValues(string(res.Status)).Inc()
	if res.Status == rotation.StatusRolledBack {
		r.rollbackTotal.Inc()
	}
	r.duration.Observe(res.FinishedAt.Sub(res.StartedAt).Seconds())
}

// WriteTextfile atomically writes the current metric values to path in the
// Prometheus text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
