package service

import (
	"context"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/engine"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"
)

// Runner executes cases and suites. *engine.Supervisor satisfies it.
type Runner interface {
	RunCase(ctx context.Context, caseID string, trigger engine.Trigger) (*models.ExecutionRequest, error)
	RunSuite(ctx context.Context, suiteID string, trigger engine.Trigger) (*models.ExecutionRequest, error)
}

// RunService 执行触发接口
type RunService interface {
	RunCase(ctx context.Context, appID, caseID string, req *RunRequest) (*models.ExecutionRequest, error)
	RunSuite(ctx context.Context, appID, suiteID string, req *RunRequest) (*models.ExecutionRequest, error)
}

type RunRequest struct {
	DryRun      bool   `json:"dryRun"`
	TriggeredBy string `json:"triggeredBy"`
	Description string `json:"description"`
}

func (r *RunRequest) trigger() engine.Trigger {
	if r == nil {
		return engine.Trigger{}
	}
	return engine.Trigger{DryRun: r.DryRun, TriggeredBy: r.TriggeredBy, Description: r.Description}
}

type runService struct {
	store  *repository.Store
	runner Runner
}

// NewRunService creates a new run service
func NewRunService(store *repository.Store, runner Runner) RunService {
	return &runService{store: store, runner: runner}
}

// RunCase runs a case synchronously and returns the finished execution request.
func (s *runService) RunCase(ctx context.Context, appID, caseID string, req *RunRequest) (*models.ExecutionRequest, error) {
	tc, err := s.store.Cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if tc.AppID != appID {
		return nil, apperr.NotFound("case", caseID)
	}
	return s.runner.RunCase(ctx, caseID, req.trigger())
}

// RunSuite runs a suite synchronously and returns the finished execution request.
func (s *runService) RunSuite(ctx context.Context, appID, suiteID string, req *RunRequest) (*models.ExecutionRequest, error) {
	suite, err := s.store.Suites.GetByID(ctx, suiteID)
	if err != nil {
		return nil, err
	}
	if suite.AppID != appID {
		return nil, apperr.NotFound("suite", suiteID)
	}
	return s.runner.RunSuite(ctx, suiteID, req.trigger())
}
