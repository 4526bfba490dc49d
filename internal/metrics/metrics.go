package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	OutcomeExact    = "exact"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)

// Metrics records what a launchbox run resolved. A run is short-lived, so
// the values are exported through a textfile rather than scraped.
type Metrics struct {
	Resolutions *prometheus.CounterVec

	DeclarationErrors *prometheus.CounterVec

	ResolveDuration prometheus.Histogram

	Kernels prometheus.Gauge

	GeneratedFiles prometheus.Counter
}

// NewMetrics registers the launchbox collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "launchbox_resolutions_total",
			Help: "The total number of kernel resolutions by target and outcome",
		}, []string{"target", "outcome"}),

		DeclarationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "launchbox_declaration_errors_total",
			Help: "The total number of rejected declaration files by format",
		}, []string{"format"}),

		ResolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "launchbox_resolve_duration_seconds",
			Help:    "Duration of resolving every kernel of a run",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10), // 1µs to ~0.26s
		}),

		Kernels: factory.NewGauge(prometheus.GaugeOpts{
			Name: "launchbox_kernels",
			Help: "Number of kernels declared in the last run",
		}),

		GeneratedFiles: factory.NewCounter(prometheus.CounterOpts{
			Name: "launchbox_generated_files_total",
			Help: "The total number of Go files written by the generator",
		}),
	}
}

// WriteTextfile writes everything g gathers to path in the text format read
// by the node exporter textfile collector. An empty path is a no-op.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, g)
}
