// Package engine walks suites, cases and action groups against a browser session and
// records every executed node as an ItemLog.
package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/browser"
	"github.com/parthasarathygopu/orca/internal/evidence"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"
)

// Event types published on the EventSink.
const (
	EventRunStarted   = "run_started"
	EventRunCompleted = "run_completed"
	EventLogOpened    = "item_log_open"
	EventLogClosed    = "item_log_close"

	// EventRunRolledBack follows a storage failure. Nothing published for the run
	// was persisted.
	EventRunRolledBack = "run_rolled_back"
)

// EventSink receives live execution events keyed by execution request id.
// *websocket.Hub satisfies it.
type EventSink interface {
	Broadcast(runID string, msgType string, payload interface{})
}

// EvidenceStore uploads failure screenshots.
type EvidenceStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (evidence.Object, error)
}

// FailurePolicy decides what a dispatcher does after one of its blocks fails.
type FailurePolicy string

const (
	// Abort stops at the first failed block and reports the error upward.
	Abort FailurePolicy = "abort"
	// Continue records the failure and carries on with the next block.
	Continue FailurePolicy = "continue"
)

// ParseFailurePolicy converts a configuration value.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case Abort, Continue:
		return FailurePolicy(s), nil
	}
	return "", fmt.Errorf("unknown failure policy %q", s)
}

// Result is what a dispatcher reports to its caller.
type Result struct {
	Status models.ItemLogStatus
	LogID  uint
	Total  int // blocks or actions executed
	Failed int
}

// Run is the state threaded through every level of one execution. Store is bound to
// the run's transaction and Driver is the run's browser session (nil in a dry run).
type Run struct {
	Request *models.ExecutionRequest
	Store   *repository.Store
	Driver  browser.Driver

	// dbctx carries values but never cancellation, so a timed-out run can still
	// close its logs inside the transaction.
	dbctx context.Context
}

// NewRun builds the per-run state.
func NewRun(ctx context.Context, er *models.ExecutionRequest, store *repository.Store, driver browser.Driver) *Run {
	return &Run{
		Request: er,
		Store:   store,
		Driver:  driver,
		dbctx:   context.WithoutCancel(ctx),
	}
}

// DryRun reports whether browser calls are skipped.
func (r *Run) DryRun() bool {
	return r.Request.IsDryRun
}

// ID is the execution request id as used for event routing.
func (r *Run) ID() string {
	return strconv.FormatUint(uint64(r.Request.ID), 10)
}

// fatal reports whether an error must stop the run regardless of failure policy.
func fatal(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindDatabase, apperr.KindCanceled:
		return true
	}
	return false
}

// checkCanceled turns a done context into a Canceled error.
func checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return apperr.Canceled(err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
