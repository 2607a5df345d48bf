// Package metrics provides Prometheus metrics for the equilibrium solver.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the solver's Prometheus collectors.
type Manager struct {
	namespace    string
	subsystem    string
	cycleBuckets []float64
	enabled      bool
	constLabels  prometheus.Labels
	registry     prometheus.Registerer

	bestResponses       prometheus.Counter
	localSearchFailures prometheus.Counter
	cycles              prometheus.Histogram
	solveDuration       prometheus.Histogram
	convergenceFailures prometheus.Counter
	partitionFailures   *prometheus.CounterVec
	runsPersisted       *prometheus.CounterVec
	stabilityVerdict    *prometheus.GaugeVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "bertrand",
		subsystem:    "solver",
		cycleBuckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
		enabled:      true,
		constLabels:  prometheus.Labels{},
		registry:     prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.bestResponses = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "best_responses_total",
		Help:        "Total number of single-slot best-response searches",
		ConstLabels: m.constLabels,
	})

	m.localSearchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "local_search_failures_total",
		Help:        "BFGS refinements that returned no usable location",
		ConstLabels: m.constLabels,
	})

	m.cycles = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "equilibrium_cycles",
		Help:        "Best-response cycles needed to reach a fixed point",
		Buckets:     m.cycleBuckets,
		ConstLabels: m.constLabels,
	})

	m.solveDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "solve_duration_seconds",
		Help:        "Wall time of one partition's equilibrium search",
		Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
		ConstLabels: m.constLabels,
	})

	m.convergenceFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "convergence_failures_total",
		Help:        "Equilibrium searches abandoned at the cycle cap or deadline",
		ConstLabels: m.constLabels,
	})

	m.partitionFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "partition_failures_total",
		Help:        "Partitions that could not be solved, by scenario",
		ConstLabels: m.constLabels,
	}, []string{"scenario"})

	m.runsPersisted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "repository",
		Name:        "runs_persisted_total",
		Help:        "Runs written to the results store, by scenario",
		ConstLabels: m.constLabels,
	}, []string{"scenario"})

	m.stabilityVerdict = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "stability",
		Name:        "core_stable",
		Help:        "1 when the partition is core stable, 0 when blocked",
		ConstLabels: m.constLabels,
	}, []string{"scenario", "partition"})
}

// RecordBestResponse increments the best-response counter.
func RecordBestResponse() {
	if globalManager.enabled {
		globalManager.bestResponses.Inc()
	}
}

// RecordLocalSearchFailure counts a local refinement without a result.
func RecordLocalSearchFailure() {
	if globalManager.enabled {
		globalManager.localSearchFailures.Inc()
	}
}

// RecordCycles observes the cycle count of a converged search.
func RecordCycles(n int) {
	if globalManager.enabled {
		globalManager.cycles.Observe(float64(n))
	}
}

// RecordSolveDuration observes one equilibrium search's wall time.
func RecordSolveDuration(d time.Duration) {
	if globalManager.enabled {
		globalManager.solveDuration.Observe(d.Seconds())
	}
}

// RecordConvergenceFailure increments the convergence failure counter.
func RecordConvergenceFailure() {
	if globalManager.enabled {
		globalManager.convergenceFailures.Inc()
	}
}

// RecordPartitionFailure counts a failed partition for the scenario.
func RecordPartitionFailure(scenario string) {
	if globalManager.enabled {
		globalManager.partitionFailures.WithLabelValues(scenario).Inc()
	}
}

// RecordRunPersisted counts a stored run for the scenario.
func RecordRunPersisted(scenario string) {
	if globalManager.enabled {
		globalManager.runsPersisted.WithLabelValues(scenario).Inc()
	}
}

// SetStabilityVerdict publishes one partition's verdict.
func SetStabilityVerdict(scenario, partition string, stable bool) {
	if !globalManager.enabled {
		return
	}
	v := 0.0
	if stable {
		v = 1
	}
	globalManager.stabilityVerdict.WithLabelValues(scenario, partition).Set(v)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node-exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, customRegistry)
}
