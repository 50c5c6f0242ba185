// Package metrics records archive run counters in a private Prometheus
// registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry         *prometheus.Registry
	filesShortlisted prometheus.Gauge
	filesMoved       prometheus.Counter
	moveFailures     prometheus.Counter
	uploads          *prometheus.CounterVec
	uploadedBytes    prometheus.Counter
	runDuration      prometheus.Gauge
	lastSuccess      prometheus.Gauge
}

func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		filesShortlisted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "files_shortlisted",
			Help:      "Files selected for archiving in the last run",
		}),
		filesMoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_moved_total",
			Help:      "Files relocated into the archive root",
		}),
		moveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "move_failures_total",
			Help:      "Files that could not be relocated",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Object uploads by outcome",
		}, []string{"status"}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes uploaded to the blob store",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last archive run",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last fully successful run",
		}),
	}

	m.registry.MustRegister(
		m.filesShortlisted,
		m.filesMoved,
		m.moveFailures,
		m.uploads,
		m.uploadedBytes,
		m.runDuration,
		m.lastSuccess,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) SetShortlisted(files int) {
	if m == nil {
		return
	}
	m.filesShortlisted.Set(float64(files))
}

func (m *Metrics) ObserveMoves(moved, failed int) {
	if m == nil {
		return
	}
	m.filesMoved.Add(float64(moved))
	m.moveFailures.Add(float64(failed))
}

func (m *Metrics) ObserveUpload(ok bool, bytes int64) {
	if m == nil {
		return
	}
	if !ok {
		m.uploads.WithLabelValues("failed").Inc()
		return
	}
	m.uploads.WithLabelValues("success").Inc()
	m.uploadedBytes.Add(float64(bytes))
}

func (m *Metrics) ObserveRun(duration time.Duration, success bool, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.runDuration.Set(duration.Seconds())
	if success {
		m.lastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
