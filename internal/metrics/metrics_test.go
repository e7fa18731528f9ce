package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RunStarted()
	m.RunStarted()
	m.RunFinished("TestCase", "Completed")
	m.ItemLogClosed("Action", "Failed")
	m.ItemLogClosed("Action", "Failed")
	m.ObserveAction("Click", 120*time.Millisecond)
	m.EvidenceUploaded(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("TestCase", "Completed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.itemLogsTotal.WithLabelValues("Action", "Failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evidenceTotal.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.actionDuration))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RunStarted()
		m.RunFinished("TestSuite", "Failed")
		m.ItemLogClosed("TestCase", "Success")
		m.ObserveAction("Open", time.Second)
		m.EvidenceUploaded(true)
	})
}
