package engine

import (
	"context"
	"fmt"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/sirupsen/logrus"
)

// SuiteDispatcher executes the blocks of a suite, each pointing at a case.
type SuiteDispatcher struct {
	audit    *AuditLog
	cases    *CaseDispatcher
	policy   FailurePolicy
	pageSize int
	logger   *logrus.Logger
}

// NewSuiteDispatcher creates a suite dispatcher.
func NewSuiteDispatcher(audit *AuditLog, cases *CaseDispatcher, policy FailurePolicy, pageSize int) *SuiteDispatcher {
	return &SuiteDispatcher{
		audit:    audit,
		cases:    cases,
		policy:   policy,
		pageSize: pageSize,
		logger:   log.GetLogger(),
	}
}

// ExecuteSuite runs suiteID under a TestSuite log. The suite log is Failed when any
// block failed.
func (d *SuiteDispatcher) ExecuteSuite(ctx context.Context, run *Run, suiteID string, parent *uint) (Result, error) {
	suiteLog, err := d.audit.Open(run, Node{
		Type:   models.LogTypeTestSuite,
		RefID:  strPtr(suiteID),
		StepID: strPtr(suiteID),
		Parent: parent,
	})
	if err != nil {
		return Result{}, err
	}
	result := Result{LogID: suiteLog.ID}

	suite, err := run.Store.Suites.GetByID(run.dbctx, suiteID)
	if err != nil {
		result.Status = models.LogFailed
		return result, d.audit.finish(run, suiteLog, err)
	}
	entry := d.logger.WithFields(logrus.Fields{
		"execution_request": run.Request.ID,
		"suite":             suite.ID,
	})
	entry.WithField("name", suite.Name).Info("Executing test suite")

	cursor := run.Store.SuiteBlocks.Cursor(suiteID, d.pageSize)
	for {
		if err := checkCanceled(ctx); err != nil {
			result.Status = models.LogFailed
			return result, d.audit.finish(run, suiteLog, err)
		}
		block, ok, err := cursor.Next(run.dbctx)
		if err != nil {
			result.Status = models.LogFailed
			return result, d.audit.finish(run, suiteLog, err)
		}
		if !ok {
			break
		}

		result.Total++
		blockErr := d.executeBlock(ctx, run, block, suiteLog.ID)
		if blockErr == nil {
			continue
		}

		result.Failed++
		entry.WithField("block", block.ID).WithError(blockErr).Warn("Suite block failed")
		if d.policy == Abort || fatal(blockErr) {
			result.Status = models.LogFailed
			return result, d.audit.finish(run, suiteLog, fmt.Errorf("suite block %d: %w", block.ExecutionOrder, blockErr))
		}
	}

	if result.Failed > 0 {
		result.Status = models.LogFailed
		if err := d.audit.Close(run, suiteLog, fmt.Errorf("%d of %d blocks failed", result.Failed, result.Total)); err != nil {
			return result, err
		}
		return result, nil
	}
	result.Status = models.LogSuccess
	return result, d.audit.finish(run, suiteLog, nil)
}

// executeBlock writes the TestSuiteBlock log and runs the referenced case beneath it.
// A case that continued past failed blocks still fails its suite block.
func (d *SuiteDispatcher) executeBlock(ctx context.Context, run *Run, block *models.SuiteBlock, parent uint) error {
	blockLog, err := d.audit.Open(run, Node{
		Type:   models.LogTypeTestSuiteBlock,
		RefID:  block.Reference,
		StepID: strPtr(block.ID),
		Parent: &parent,
	})
	if err != nil {
		return err
	}

	var runErr error
	switch {
	case block.Type != models.SuiteBlockTypeTestCase:
		runErr = apperr.Unsupported(fmt.Sprintf("suite block type %s", block.Type), block.ID)
	case block.Reference == nil || *block.Reference == "":
		runErr = apperr.MissingParameter("reference", block.ID)
	default:
		var res Result
		res, runErr = d.cases.ExecuteCase(ctx, run, *block.Reference, &blockLog.ID, strPtr(block.ID))
		if runErr == nil && res.Failed > 0 {
			runErr = fmt.Errorf("case %s: %d of %d blocks failed", *block.Reference, res.Failed, res.Total)
		}
	}
	return d.audit.finish(run, blockLog, runErr)
}
