// Package metrics records batch conversion metrics in a private Prometheus
// registry. The tool is short-lived, so metrics are not served over HTTP;
// they are written once per run in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "licor"

// Status labels for FilesConverted.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder holds the conversion metrics. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	filesConverted  *prometheus.CounterVec // By status (ok/failed)
	rowsConverted   prometheus.Counter
	columnsFallback prometheus.Counter
	duration        prometheus.Histogram
}

// New creates a Recorder with its metrics registered in a fresh registry.
func New() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		filesConverted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_converted_total",
			Help:      "Total number of input files processed, by outcome",
		}, []string{"status"}),

		rowsConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_converted_total",
			Help:      "Total number of data rows written",
		}),

		columnsFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "columns_fallback_total",
			Help:      "Total number of columns converted to text because a value did not parse",
		}),

		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Time to parse and encode one file",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	for _, c := range []prometheus.Collector{r.filesConverted, r.rowsConverted, r.columnsFallback, r.duration} {
		if err := r.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return r, nil
}

// FileConverted records a successful conversion.
func (r *Recorder) FileConverted(rows, fallbackColumns int, d time.Duration) {
	if r == nil {
		return
	}
	r.filesConverted.WithLabelValues(StatusOK).Inc()
	r.rowsConverted.Add(float64(rows))
	r.columnsFallback.Add(float64(fallbackColumns))
	r.duration.Observe(d.Seconds())
}

// FileFailed records a failed conversion.
func (r *Recorder) FileFailed(d time.Duration) {
	if r == nil {
		return
	}
	r.filesConverted.WithLabelValues(StatusFailed).Inc()
	r.duration.Observe(d.Seconds())
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
