package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for test execution.
type Metrics struct {
	runsTotal      *prometheus.CounterVec
	runsActive     prometheus.Gauge
	itemLogsTotal  *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	evidenceTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers execution metrics with the given registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orca_runs_total",
			Help: "Total number of finished runs by history type and terminal status",
		}, []string{"history_type", "status"}),
		runsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "orca_runs_active",
			Help: "Current number of runs in progress",
		}),
		itemLogsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orca_item_logs_total",
			Help: "Total number of closed item logs by node type and status",
		}, []string{"type", "status"}),
		actionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orca_action_duration_seconds",
			Help:    "Duration of leaf actions by kind",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"kind"}),
		evidenceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orca_evidence_uploads_total",
			Help: "Total number of evidence uploads by outcome",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.runsTotal,
		m.runsActive,
		m.itemLogsTotal,
		m.actionDuration,
		m.evidenceTotal,
	)

	return m
}

// RunStarted increments the active runs gauge.
func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}
	m.runsActive.Inc()
}

// RunFinished records a terminal run status.
func (m *Metrics) RunFinished(historyType, status string) {
	if m == nil {
		return
	}
	m.runsActive.Dec()
	m.runsTotal.WithLabelValues(historyType, status).Inc()
}

// ItemLogClosed records a closed audit log.
func (m *Metrics) ItemLogClosed(logType, status string) {
	if m == nil {
		return
	}
	m.itemLogsTotal.WithLabelValues(logType, status).Inc()
}

// ObserveAction records how long one action took.
func (m *Metrics) ObserveAction(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.actionDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// EvidenceUploaded records an evidence upload attempt.
func (m *Metrics) EvidenceUploaded(ok bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	m.evidenceTotal.WithLabelValues(outcome).Inc()
}
