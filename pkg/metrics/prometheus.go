// Package metrics provides Prometheus metrics for a proteams run.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Team lookup outcomes used as label values.
const (
	LookupOK     = "ok"
	LookupFailed = "failed"
)

// Manager manages all Prometheus metrics for one process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	// Input quality
	playersFetched      prometheus.Counter
	playersDuplicate    prometheus.Counter
	playersScored       prometheus.Counter
	dataQualityWarnings prometheus.Counter

	// Team lookups and report
	teamLookups   *prometheus.CounterVec
	teamsReported prometheus.Gauge

	// Upstream API and run timing
	apiRequestDuration *prometheus.HistogramVec
	runDuration        prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager on its own registry. The Go runtime
// and process collectors are not registered.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "proteams",
		subsystem:        "report",
		histogramBuckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000},
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.playersFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_fetched_total",
		Help:      "Player records returned by the player list",
	})

	m.playersDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_duplicate_total",
		Help:      "Player records dropped for a repeated account id",
	})

	m.playersScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_scored_total",
		Help:      "Player records folded into team totals",
	})

	m.dataQualityWarnings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "data_quality_warnings_total",
		Help:      "Players scored as zero because of missing or malformed history",
	})

	m.teamLookups = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "team_lookups_total",
			Help:      "Team metadata lookups by outcome",
		},
		[]string{"outcome"},
	)

	m.teamsReported = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_reported",
		Help:      "Teams present in the last report",
	})

	m.apiRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "api_request_duration_milliseconds",
			Help:      "Upstream API request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "status"},
	)

	m.runDuration = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Wall time of the last pipeline run in milliseconds",
	})
}

// RecordPlayersFetched adds n fetched player records.
func (m *Manager) RecordPlayersFetched(n int) { m.playersFetched.Add(float64(n)) }

// RecordPlayerDuplicate counts one dropped duplicate record.
func (m *Manager) RecordPlayerDuplicate() { m.playersDuplicate.Inc() }

// RecordPlayersScored adds n scored player records.
func (m *Manager) RecordPlayersScored(n int) { m.playersScored.Add(float64(n)) }

// RecordDataQualityWarning counts one zero-scored player.
func (m *Manager) RecordDataQualityWarning() { m.dataQualityWarnings.Inc() }

// RecordTeamLookup counts one lookup with outcome LookupOK or LookupFailed.
func (m *Manager) RecordTeamLookup(outcome string) {
	m.teamLookups.WithLabelValues(outcome).Inc()
}

// UpdateTeamsReported sets the number of teams in the report.
func (m *Manager) UpdateTeamsReported(n int) { m.teamsReported.Set(float64(n)) }

// RecordAPIRequest observes one upstream request.
func (m *Manager) RecordAPIRequest(endpoint string, status int, latencyMs float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.apiRequestDuration.WithLabelValues(endpoint, label).Observe(latencyMs)
}

// RecordRunDuration sets the duration of the last run.
func (m *Manager) RecordRunDuration(latencyMs float64) { m.runDuration.Set(latencyMs) }

// Registry returns the registry the manager's metrics live on.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// WriteTextfile writes the registry in the text exposition format to path,
// suitable for the node_exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteTextfile, err)
	}
	return nil
}

// Default returns the global manager.
func Default() *Manager { return globalManager }
