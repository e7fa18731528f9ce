package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/browser"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/metrics"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"

	"github.com/sirupsen/logrus"
)

// StatusMode selects how a run's terminal status is derived.
type StatusMode string

const (
	// StatusReduce folds the dispatcher outcome into Completed, CompletedWithErrors or Failed.
	StatusReduce StatusMode = "reduce"
	// StatusAlwaysCompleted ends every run Completed, whatever its children did.
	StatusAlwaysCompleted StatusMode = "always-completed"
)

// ReduceStatus maps a dispatcher outcome to a run status. An error means the top-level
// dispatcher aborted; counted failures without an error mean it continued past them.
func ReduceStatus(mode StatusMode, result Result, err error) models.ExecutionStatus {
	if mode == StatusAlwaysCompleted {
		return models.ExecutionCompleted
	}
	switch {
	case err != nil:
		return models.ExecutionFailed
	case result.Failed > 0 || result.Status == models.LogFailed:
		return models.ExecutionCompletedWithErrors
	default:
		return models.ExecutionCompleted
	}
}

// Options configures a Supervisor.
type Options struct {
	SuiteBlockPageSize int
	CaseBlockPageSize  int
	ActionPageSize     int
	SuitePolicy        FailurePolicy
	CasePolicy         FailurePolicy
	StatusMode         StatusMode
	RunTimeout         time.Duration

	Evidence       EvidenceStore
	EvidenceBucket string
	Events         EventSink
	Metrics        *metrics.Metrics

	// SerializeRuns lets one run hold the storage transaction at a time. Backends
	// with a single writer (sqlite) need it.
	SerializeRuns bool
}

func (o *Options) defaults() {
	if o.SuiteBlockPageSize <= 0 {
		o.SuiteBlockPageSize = 10
	}
	if o.CaseBlockPageSize <= 0 {
		o.CaseBlockPageSize = 10
	}
	if o.ActionPageSize <= 0 {
		o.ActionPageSize = 50
	}
	if o.SuitePolicy == "" {
		o.SuitePolicy = Continue
	}
	if o.CasePolicy == "" {
		o.CasePolicy = Abort
	}
	if o.StatusMode == "" {
		o.StatusMode = StatusReduce
	}
}

// Supervisor creates execution requests, drives the matching dispatcher and finalizes
// the run. Each run owns one browser session and one storage transaction.
type Supervisor struct {
	store   *repository.Store
	browser browser.Factory
	suites  *SuiteDispatcher
	cases   *CaseDispatcher
	opts    Options
	logger  *logrus.Logger
	slot    chan struct{} // nil unless runs are serialized
}

// NewSupervisor wires the dispatcher chain.
func NewSupervisor(store *repository.Store, factory browser.Factory, opts Options) *Supervisor {
	opts.defaults()
	audit := NewAuditLog(opts.Events, opts.Metrics)
	actions := NewActionExecutor(audit, opts.ActionPageSize, opts.Evidence, opts.EvidenceBucket, opts.Metrics)
	cases := NewCaseDispatcher(audit, actions, opts.CasePolicy, opts.CaseBlockPageSize)
	suites := NewSuiteDispatcher(audit, cases, opts.SuitePolicy, opts.SuiteBlockPageSize)
	s := &Supervisor{
		store:   store,
		browser: factory,
		suites:  suites,
		cases:   cases,
		opts:    opts,
		logger:  log.GetLogger(),
	}
	if opts.SerializeRuns {
		s.slot = make(chan struct{}, 1)
	}
	return s
}

// Trigger describes who started a run and how.
type Trigger struct {
	DryRun      bool
	TriggeredBy string
	Description string
}

// RunCase executes a single case.
func (s *Supervisor) RunCase(ctx context.Context, caseID string, trigger Trigger) (*models.ExecutionRequest, error) {
	return s.run(ctx, models.HistoryTypeTestCase, caseID, trigger, func(ctx context.Context, run *Run) (Result, error) {
		return s.cases.ExecuteCase(ctx, run, caseID, nil, nil)
	})
}

// RunSuite executes every block of a suite.
func (s *Supervisor) RunSuite(ctx context.Context, suiteID string, trigger Trigger) (*models.ExecutionRequest, error) {
	return s.run(ctx, models.HistoryTypeTestSuite, suiteID, trigger, func(ctx context.Context, run *Run) (Result, error) {
		return s.suites.ExecuteSuite(ctx, run, suiteID, nil)
	})
}

type dispatchFunc func(ctx context.Context, run *Run) (Result, error)

// run returns an error only when the run could not be recorded: the browser session
// failed to open, or storage failed and the transaction was rolled back. Failures
// inside the run are reported through the request status and its item logs.
func (s *Supervisor) run(ctx context.Context, historyType models.HistoryType, ref string, trigger Trigger, dispatch dispatchFunc) (*models.ExecutionRequest, error) {
	if s.slot != nil {
		select {
		case s.slot <- struct{}{}:
			defer func() { <-s.slot }()
		case <-ctx.Done():
			return nil, apperr.Canceled(ctx.Err())
		}
	}
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}
	entry := s.logger.WithFields(logrus.Fields{
		"history_type": historyType,
		"reference":    ref,
		"dry_run":      trigger.DryRun,
	})

	var driver browser.Driver
	if !trigger.DryRun {
		if s.browser == nil {
			return nil, apperr.Forbidden("no browser configured", ref)
		}
		d, err := s.browser.NewSession(ctx)
		if err != nil {
			return nil, apperr.Driver("session", err)
		}
		driver = d
		defer func() {
			if err := driver.Close(context.WithoutCancel(ctx)); err != nil {
				entry.WithError(err).Warn("Failed to close browser session")
			}
		}()
	}

	er := &models.ExecutionRequest{
		Reference:   ref,
		HistoryType: historyType,
		Kind:        models.ExecutionKindTrigger,
		Status:      models.ExecutionStarted,
		IsDryRun:    trigger.DryRun,
		Description: trigger.Description,
		TriggeredBy: trigger.TriggeredBy,
		TriggeredAt: time.Now(),
	}

	s.opts.Metrics.RunStarted()
	dbctx := context.WithoutCancel(ctx)
	var result Result
	var runErr error
	err := s.store.Transaction(dbctx, func(tx *repository.Store) error {
		if err := tx.Executions.Create(dbctx, er); err != nil {
			return err
		}
		run := NewRun(ctx, er, tx, driver)
		s.publish(EventRunStarted, er)

		er.Status = models.ExecutionRunning
		if err := tx.Executions.Update(dbctx, er); err != nil {
			return err
		}
		entry = entry.WithField("execution_request", er.ID)
		entry.Info("Run started")

		result, runErr = dispatch(ctx, run)
		if apperr.Is(runErr, apperr.KindDatabase) {
			return runErr
		}

		finished := time.Now()
		er.FinishedAt = &finished
		er.Status = ReduceStatus(s.opts.StatusMode, result, runErr)
		er.Summary = map[string]interface{}{
			"logId":      result.LogID,
			"total":      result.Total,
			"failed":     result.Failed,
			"passed":     result.Total - result.Failed,
			"durationMs": finished.Sub(er.TriggeredAt).Milliseconds(),
		}
		if runErr != nil {
			er.Error = runErr.Error()
		}
		if err := tx.Executions.Update(dbctx, er); err != nil {
			return err
		}
		s.publish(EventRunCompleted, er)
		return nil
	})
	if err != nil {
		s.opts.Metrics.RunFinished(string(historyType), "RolledBack")
		entry.WithError(err).Error("Run rolled back")
		if er.ID != 0 {
			// Subscribers have already seen ids from the discarded transaction.
			er.Error = err.Error()
			s.publish(EventRunRolledBack, er)
		}
		return nil, fmt.Errorf("run %s %s: %w", historyType, ref, err)
	}

	s.opts.Metrics.RunFinished(string(historyType), string(er.Status))
	fields := logrus.Fields{"status": er.Status, "total": result.Total, "failed": result.Failed}
	if runErr != nil {
		entry.WithFields(fields).WithError(runErr).Warn("Run finished with failures")
	} else {
		entry.WithFields(fields).Info("Run finished")
	}
	return er, nil
}

func (s *Supervisor) publish(msgType string, er *models.ExecutionRequest) {
	if s.opts.Events == nil {
		return
	}
	s.opts.Events.Broadcast(strconv.FormatUint(uint64(er.ID), 10), msgType, map[string]interface{}{
		"id":          er.ID,
		"historyType": er.HistoryType,
		"reference":   er.Reference,
		"status":      er.Status,
		"isDryRun":    er.IsDryRun,
		"error":       er.Error,
	})
}
