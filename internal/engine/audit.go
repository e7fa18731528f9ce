package engine

import (
	"context"
	"time"

	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/metrics"
	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/sirupsen/logrus"
)

// AuditLog writes ItemLogs. Every Open is paired with exactly one Close, and Close
// runs even when the run's context has been canceled.
type AuditLog struct {
	events  EventSink
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewAuditLog creates an audit log writer. events and m may be nil.
func NewAuditLog(events EventSink, m *metrics.Metrics) *AuditLog {
	return &AuditLog{events: events, metrics: m, logger: log.GetLogger()}
}

// Node identifies what an ItemLog is written for.
type Node struct {
	Type   models.ItemLogType
	RefID  *string
	StepID *string
	Parent *uint
}

// Open inserts a Running log for node.
func (a *AuditLog) Open(run *Run, node Node) (*models.ItemLog, error) {
	entry := &models.ItemLog{
		ExecutionRequestID: run.Request.ID,
		RefID:              node.RefID,
		StepID:             node.StepID,
		ParentID:           node.Parent,
		Type:               node.Type,
		Status:             models.LogRunning,
		StartedAt:          time.Now(),
	}
	if err := run.Store.ItemLogs.Create(run.dbctx, entry); err != nil {
		return nil, err
	}
	a.publish(run, EventLogOpened, entry)
	return entry, nil
}

// Close sets the terminal status from err and records timing.
func (a *AuditLog) Close(run *Run, entry *models.ItemLog, err error) error {
	finished := time.Now()
	entry.FinishedAt = &finished
	entry.ExecutionTime = finished.Sub(entry.StartedAt).Milliseconds()
	if err != nil {
		entry.Status = models.LogFailed
		entry.Message = err.Error()
	} else {
		entry.Status = models.LogSuccess
	}

	if ferr := run.Store.ItemLogs.Finish(run.dbctx, entry); ferr != nil {
		return ferr
	}

	fields := logrus.Fields{
		"execution_request": run.Request.ID,
		"item_log":          entry.ID,
		"type":              entry.Type,
		"status":            entry.Status,
		"duration_ms":       entry.ExecutionTime,
	}
	if entry.RefID != nil {
		fields["ref"] = *entry.RefID
	}
	if err != nil {
		a.logger.WithFields(fields).WithError(err).Warn("Node failed")
	} else {
		a.logger.WithFields(fields).Debug("Node completed")
	}

	a.metrics.ItemLogClosed(string(entry.Type), string(entry.Status))
	a.publish(run, EventLogClosed, entry)
	return nil
}

// finish closes entry and returns the error that should travel upward: a storage
// failure while closing wins over the node's own error.
func (a *AuditLog) finish(run *Run, entry *models.ItemLog, err error) error {
	if cerr := a.Close(run, entry, err); cerr != nil {
		return cerr
	}
	return err
}

func (a *AuditLog) publish(run *Run, msgType string, entry *models.ItemLog) {
	if a.events == nil {
		return
	}
	payload := map[string]interface{}{
		"id":            entry.ID,
		"parentId":      entry.ParentID,
		"type":          entry.Type,
		"status":        entry.Status,
		"refId":         entry.RefID,
		"stepId":        entry.StepID,
		"executionTime": entry.ExecutionTime,
	}
	if entry.Message != "" {
		payload["message"] = entry.Message
	}
	a.events.Broadcast(run.ID(), msgType, payload)
}

// background detaches ctx from cancellation for best-effort work after a failure.
func background(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
