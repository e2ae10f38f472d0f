package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names used as the "stage" label.
const (
	StageCollect = "collect"
	StageRead    = "read"
	StageConcat  = "concat"
	StageResolve = "resolve"
	StageWrite   = "write"
)

// Manager manages all Prometheus metrics for a pipeline run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Input metrics
	filesRead   prometheus.Counter
	filesFailed prometheus.Counter
	rowsRead    prometheus.Counter

	// Data quality metrics
	missingValues *prometheus.GaugeVec

	// Join and output metrics
	joinRows   *prometheus.GaugeVec
	tierRows   *prometheus.GaugeVec
	reportRows prometheus.Gauge

	// Run metrics
	stageDuration   *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	lastSuccessUnix prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Initialize global metrics on a custom registry to avoid default Go metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "comb_excel",
		subsystem:        "report",
		histogramBuckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.filesRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_read_total",
		Help:        "Total number of spreadsheet files read successfully",
		ConstLabels: labels,
	})

	m.filesFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_failed_total",
		Help:        "Total number of spreadsheet files that could not be read",
		ConstLabels: labels,
	})

	m.rowsRead = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_read_total",
		Help:        "Total number of sales rows read from input files",
		ConstLabels: labels,
	})

	m.missingValues = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "missing_values",
			Help:        "Missing cells per column of the aggregated sales table",
			ConstLabels: labels,
		},
		[]string{"column"},
	)

	m.joinRows = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "join_rows",
			Help:        "Sales rows by customer join outcome",
			ConstLabels: labels,
		},
		[]string{"outcome"},
	)

	m.tierRows = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "tier_rows",
			Help:        "Report rows per customer tier",
			ConstLabels: labels,
		},
		[]string{"tier"},
	)

	m.reportRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows",
		Help:        "Data rows written to the summary report",
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "stage_duration_seconds",
			Help:        "Duration of each pipeline stage in seconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"stage"},
	)

	m.runs = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "runs_total",
			Help:        "Pipeline runs by result",
			ConstLabels: labels,
		},
		[]string{"result"},
	)

	m.lastSuccessUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_unix",
		Help:        "Unix timestamp of the last successful run",
		ConstLabels: labels,
	})
}

// RecordFileRead counts a successfully parsed file and its rows.
func (m *Manager) RecordFileRead(rows int) {
	if !m.enabled {
		return
	}
	m.filesRead.Inc()
	m.rowsRead.Add(float64(rows))
}

// RecordFileFailed counts a file that could not be read.
func (m *Manager) RecordFileFailed() {
	if m.enabled {
		m.filesFailed.Inc()
	}
}

// SetMissingValues records the missing-cell count for column.
func (m *Manager) SetMissingValues(column string, count int) {
	if m.enabled {
		m.missingValues.WithLabelValues(column).Set(float64(count))
	}
}

// SetJoinRows records the row count for a join outcome.
func (m *Manager) SetJoinRows(outcome string, count int) {
	if m.enabled {
		m.joinRows.WithLabelValues(outcome).Set(float64(count))
	}
}

// SetTierRows records the row count for a tier.
func (m *Manager) SetTierRows(tier string, count int) {
	if m.enabled {
		m.tierRows.WithLabelValues(tier).Set(float64(count))
	}
}

// SetReportRows records the number of rows written.
func (m *Manager) SetReportRows(count int) {
	if m.enabled {
		m.reportRows.Set(float64(count))
	}
}

// ObserveStage records how long a stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	if m.enabled {
		m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// RecordRun counts a finished run; successful runs also stamp the last
// success time.
func (m *Manager) RecordRun(err error, now time.Time) {
	if !m.enabled {
		return
	}
	if err != nil {
		m.runs.WithLabelValues("failure").Inc()
		return
	}
	m.runs.WithLabelValues("success").Inc()
	m.lastSuccessUnix.Set(float64(now.Unix()))
}

// WriteTextfile writes the current metrics in text exposition format to
// path, for pickup by the node_exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTextfile, path, err)
	}
	return nil
}

// Registry returns the registry the manager registers on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }
