package engine

import (
	"context"
	"fmt"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/sirupsen/logrus"
)

// CaseDispatcher executes the blocks of a case in ascending execution order.
type CaseDispatcher struct {
	audit    *AuditLog
	actions  *ActionExecutor
	policy   FailurePolicy
	pageSize int
	logger   *logrus.Logger
}

// NewCaseDispatcher creates a case dispatcher.
func NewCaseDispatcher(audit *AuditLog, actions *ActionExecutor, policy FailurePolicy, pageSize int) *CaseDispatcher {
	return &CaseDispatcher{
		audit:    audit,
		actions:  actions,
		policy:   policy,
		pageSize: pageSize,
		logger:   log.GetLogger(),
	}
}

// ExecuteCase runs caseID under a TestCase log. refID is the id of the suite block that
// invoked the case, if any. A returned error means the case stopped early; with the
// Continue policy block failures are only counted in the Result.
func (d *CaseDispatcher) ExecuteCase(ctx context.Context, run *Run, caseID string, parent *uint, refID *string) (Result, error) {
	stepID := caseID
	if refID != nil {
		stepID = *refID
	}
	caseLog, err := d.audit.Open(run, Node{
		Type:   models.LogTypeTestCase,
		RefID:  strPtr(caseID),
		StepID: strPtr(stepID),
		Parent: parent,
	})
	if err != nil {
		return Result{}, err
	}
	result := Result{LogID: caseLog.ID}

	tc, err := run.Store.Cases.GetByID(run.dbctx, caseID)
	if err != nil {
		result.Status = models.LogFailed
		return result, d.audit.finish(run, caseLog, err)
	}
	entry := d.logger.WithFields(logrus.Fields{
		"execution_request": run.Request.ID,
		"case":              tc.ID,
	})
	entry.WithField("name", tc.Name).Info("Executing test case")

	cursor := run.Store.CaseBlocks.Cursor(caseID, d.pageSize)
	for {
		if err := checkCanceled(ctx); err != nil {
			result.Status = models.LogFailed
			return result, d.audit.finish(run, caseLog, err)
		}
		block, ok, err := cursor.Next(run.dbctx)
		if err != nil {
			result.Status = models.LogFailed
			return result, d.audit.finish(run, caseLog, err)
		}
		if !ok {
			break
		}

		result.Total++
		blockErr := d.executeBlock(ctx, run, block, caseLog.ID)
		if blockErr == nil {
			continue
		}

		result.Failed++
		entry.WithField("block", block.ID).WithError(blockErr).Warn("Case block failed")
		if d.policy == Abort || fatal(blockErr) {
			result.Status = models.LogFailed
			return result, d.audit.finish(run, caseLog, fmt.Errorf("case block %d: %w", block.ExecutionOrder, blockErr))
		}
	}

	if result.Failed > 0 {
		result.Status = models.LogFailed
		if err := d.audit.Close(run, caseLog, fmt.Errorf("%d of %d blocks failed", result.Failed, result.Total)); err != nil {
			return result, err
		}
		return result, nil
	}
	result.Status = models.LogSuccess
	return result, d.audit.finish(run, caseLog, nil)
}

// executeBlock writes the TestCaseBlock log and dispatches on (kind, type).
func (d *CaseDispatcher) executeBlock(ctx context.Context, run *Run, block *models.CaseBlock, parent uint) error {
	blockLog, err := d.audit.Open(run, Node{
		Type:   models.LogTypeTestCaseBlock,
		RefID:  block.Reference,
		StepID: strPtr(block.ID),
		Parent: &parent,
	})
	if err != nil {
		return err
	}
	return d.audit.finish(run, blockLog, d.dispatch(ctx, run, block, blockLog.ID))
}

func (d *CaseDispatcher) dispatch(ctx context.Context, run *Run, block *models.CaseBlock, logID uint) error {
	switch {
	case block.Kind == models.BlockKindReference &&
		(block.Type == models.BlockTypeActionGroup || block.Type == models.BlockTypeAssertion):
		if block.Reference == nil || *block.Reference == "" {
			return apperr.MissingParameter("reference", block.ID)
		}
		_, err := d.actions.ExecuteActionGroup(ctx, run, *block.Reference, &logID)
		return err
	default:
		return apperr.Unsupported(fmt.Sprintf("case block %s/%s", block.Kind, block.Type), block.ID)
	}
}
