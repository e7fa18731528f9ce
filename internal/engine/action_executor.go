package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/browser"
	"github.com/parthasarathygopu/orca/internal/evidence"
	"github.com/parthasarathygopu/orca/internal/log"
	"github.com/parthasarathygopu/orca/internal/metrics"
	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ActionExecutor runs the actions of an action group in order, stopping at the first
// failure.
type ActionExecutor struct {
	audit    *AuditLog
	pageSize int
	evidence EvidenceStore
	bucket   string
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

// NewActionExecutor creates an executor. store may be nil to disable evidence capture.
func NewActionExecutor(audit *AuditLog, pageSize int, store EvidenceStore, bucket string, m *metrics.Metrics) *ActionExecutor {
	return &ActionExecutor{
		audit:    audit,
		pageSize: pageSize,
		evidence: store,
		bucket:   bucket,
		metrics:  m,
		logger:   log.GetLogger(),
	}
}

// ExecuteActionGroup runs every action of groupID under an ActionGroup log parented to
// parent.
func (x *ActionExecutor) ExecuteActionGroup(ctx context.Context, run *Run, groupID string, parent *uint) (Result, error) {
	groupLog, err := x.audit.Open(run, Node{
		Type:   models.LogTypeActionGroup,
		RefID:  strPtr(groupID),
		StepID: strPtr(groupID),
		Parent: parent,
	})
	if err != nil {
		return Result{}, err
	}
	result := Result{LogID: groupLog.ID}

	if _, err := run.Store.ActionGroups.GetByID(run.dbctx, groupID); err != nil {
		result.Status = models.LogFailed
		return result, x.audit.finish(run, groupLog, err)
	}

	cursor := run.Store.Actions.Cursor(groupID, x.pageSize)
	for {
		if err := checkCanceled(ctx); err != nil {
			result.Status = models.LogFailed
			return result, x.audit.finish(run, groupLog, err)
		}
		action, ok, err := cursor.Next(run.dbctx)
		if err != nil {
			result.Status = models.LogFailed
			return result, x.audit.finish(run, groupLog, err)
		}
		if !ok {
			break
		}

		result.Total++
		if err := x.executeLogged(ctx, run, action, groupLog.ID); err != nil {
			result.Failed++
			result.Status = models.LogFailed
			return result, x.audit.finish(run, groupLog, fmt.Errorf("action %d (%s): %w", action.ExecutionOrder, action.Kind, err))
		}
	}

	result.Status = models.LogSuccess
	return result, x.audit.finish(run, groupLog, nil)
}

// executeLogged wraps StepExecute in an Action log and captures evidence on failure.
func (x *ActionExecutor) executeLogged(ctx context.Context, run *Run, action *models.Action, parent uint) error {
	actionLog, err := x.audit.Open(run, Node{
		Type:   models.LogTypeAction,
		RefID:  strPtr(action.ID),
		StepID: strPtr(action.ID),
		Parent: &parent,
	})
	if err != nil {
		return err
	}

	started := time.Now()
	stepErr := x.StepExecute(ctx, run, action)
	x.metrics.ObserveAction(string(action.Kind), time.Since(started))

	if stepErr != nil && !fatal(stepErr) {
		x.captureEvidence(ctx, run, actionLog)
	}
	return x.audit.finish(run, actionLog, stepErr)
}

// StepExecute performs one action. In a dry run parameters are validated and the
// browser is left untouched.
func (x *ActionExecutor) StepExecute(ctx context.Context, run *Run, action *models.Action) error {
	entry := x.logger.WithFields(logrus.Fields{
		"execution_request": run.Request.ID,
		"action":            action.ID,
		"kind":              action.Kind,
	})

	switch action.Kind {
	case models.ActionOpen:
		url, err := requireParam(action.DataValue, "data_value", action.ID)
		if err != nil {
			return err
		}
		entry.WithField("url", url).Info("Opening page")
		if run.DryRun() {
			return nil
		}
		if err := x.driver(run, action); err != nil {
			return err
		}
		return driverErr(ctx, "open", run.Driver.Open(ctx, url))

	case models.ActionEnter:
		text, err := requireParam(action.DataValue, "data_value", action.ID)
		if err != nil {
			return err
		}
		by, err := locator(action.TargetKind, action.TargetValue, "target_value", action.ID)
		if err != nil {
			return err
		}
		if run.DryRun() {
			return nil
		}
		el, err := x.find(ctx, run, action, by)
		if err != nil {
			return err
		}
		return driverErr(ctx, "send keys", el.SendKeys(ctx, text))

	case models.ActionClick:
		// Click addresses its element through data_value.
		by, err := locator(action.TargetKind, action.DataValue, "data_value", action.ID)
		if err != nil {
			return err
		}
		if run.DryRun() {
			return nil
		}
		el, err := x.find(ctx, run, action, by)
		if err != nil {
			return err
		}
		return driverErr(ctx, "click", el.Click(ctx))

	case models.ActionDoubleClick:
		by, err := locator(action.TargetKind, action.TargetValue, "target_value", action.ID)
		if err != nil {
			return err
		}
		if run.DryRun() {
			return nil
		}
		el, err := x.find(ctx, run, action, by)
		if err != nil {
			return err
		}
		return driverErr(ctx, "double click", el.DoubleClick(ctx))

	case models.ActionVerifyText:
		expected, err := requireParam(action.DataValue, "data_value", action.ID)
		if err != nil {
			return err
		}
		by, err := locator(action.TargetKind, action.TargetValue, "target_value", action.ID)
		if err != nil {
			return err
		}
		if run.DryRun() {
			return nil
		}
		el, err := x.find(ctx, run, action, by)
		if err != nil {
			return err
		}
		actual, err := el.Text(ctx)
		if err != nil {
			return driverErr(ctx, "read text", err)
		}
		if actual != expected {
			entry.WithFields(logrus.Fields{"expected": expected, "actual": actual}).Warn("Text verification failed")
			return apperr.VerificationFailed(expected, actual, action.ID)
		}
		entry.WithField("text", actual).Info("Text verified")
		return nil

	default:
		return apperr.Unsupported(fmt.Sprintf("action kind %q", action.Kind), action.ID)
	}
}

func (x *ActionExecutor) driver(run *Run, action *models.Action) error {
	if run.Driver == nil {
		return apperr.Forbidden("no browser session for this run", action.ID)
	}
	return nil
}

func (x *ActionExecutor) find(ctx context.Context, run *Run, action *models.Action, by browser.By) (browser.Element, error) {
	if err := x.driver(run, action); err != nil {
		return nil, err
	}
	el, err := run.Driver.FindElement(ctx, by)
	if err != nil {
		return nil, driverErr(ctx, "find element "+by.String(), err)
	}
	return el, nil
}

// captureEvidence stores a screenshot for a failed action. Failures here are logged
// and never change the action outcome.
func (x *ActionExecutor) captureEvidence(ctx context.Context, run *Run, actionLog *models.ItemLog) {
	if x.evidence == nil || run.Driver == nil || run.DryRun() {
		return
	}
	ctx = background(ctx)
	entry := x.logger.WithFields(logrus.Fields{
		"execution_request": run.Request.ID,
		"item_log":          actionLog.ID,
	})

	shot, err := run.Driver.Screenshot(ctx)
	if err != nil {
		entry.WithError(err).Warn("Failed to capture screenshot")
		return
	}
	obj, err := x.evidence.Put(ctx, evidence.ScreenshotKey(run.Request.ID, actionLog.ID), shot, "image/png")
	x.metrics.EvidenceUploaded(err == nil)
	if err != nil {
		entry.WithError(err).Warn("Failed to upload screenshot")
		return
	}

	bucket := obj.Bucket
	if bucket == "" {
		bucket = x.bucket
	}
	attachment := &models.Attachment{
		ID:                 uuid.NewString(),
		Category:           models.AttachmentEvidence,
		ExecutionRequestID: run.Request.ID,
		ItemLogID:          actionLog.ID,
		Bucket:             bucket,
		Path:               obj.Key,
		ContentType:        "image/png",
		Size:               obj.Size,
		Metadata:           map[string]interface{}{"etag": obj.ETag},
	}
	if err := run.Store.Attachments.Create(run.dbctx, attachment); err != nil {
		entry.WithError(err).Warn("Failed to record screenshot attachment")
	}
}

func requireParam(v *string, field, ref string) (string, error) {
	if v == nil || *v == "" {
		return "", apperr.MissingParameter(field, ref)
	}
	return *v, nil
}

func locator(kind *models.TargetKind, value *string, field, ref string) (browser.By, error) {
	v, err := requireParam(value, field, ref)
	if err != nil {
		return browser.By{}, err
	}
	if kind == nil || *kind == "" {
		return browser.By{}, apperr.MissingParameter("target_kind", ref)
	}
	switch *kind {
	case models.TargetCss, models.TargetID, models.TargetXpath:
	default:
		return browser.By{}, apperr.Unsupported(fmt.Sprintf("target kind %q", *kind), ref)
	}
	return browser.By{Kind: *kind, Value: v}, nil
}

// driverErr classifies a browser failure, reporting cancellation when the run's
// context ended.
func driverErr(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return apperr.Canceled(ctx.Err())
	}
	return apperr.Driver(op, err)
}
