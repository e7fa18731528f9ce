package service

import (
	"context"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"

	"github.com/google/uuid"
)

// CaseService 测试用例服务接口
type CaseService interface {
	ListCases(ctx context.Context, appID string) ([]models.Case, error)
	CreateCase(ctx context.Context, appID string, req *CreateCaseRequest) (*models.Case, error)
	GetCase(ctx context.Context, appID, caseID string) (*models.Case, error)
	DeleteCase(ctx context.Context, appID, caseID string) error

	InsertBlock(ctx context.Context, appID, caseID string, req *CaseBlockRequest) (*models.CaseBlock, error)
	MoveBlock(ctx context.Context, appID, caseID, blockID string, position int) (*models.CaseBlock, error)
	DeleteBlock(ctx context.Context, appID, caseID, blockID string) error
}

type caseService struct {
	store *repository.Store
}

// NewCaseService creates a new case service
func NewCaseService(store *repository.Store) CaseService {
	return &caseService{store: store}
}

type CreateCaseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
}

type CaseBlockRequest struct {
	Kind      models.BlockKind `json:"kind"`
	Type      models.BlockType `json:"type" binding:"required"`
	Reference string           `json:"reference"`
	Position  *int             `json:"position"`
}

func (s *caseService) ListCases(ctx context.Context, appID string) ([]models.Case, error) {
	return s.store.Cases.ListByApp(ctx, appID)
}

func (s *caseService) CreateCase(ctx context.Context, appID string, req *CreateCaseRequest) (*models.Case, error) {
	if req.Name == "" {
		return nil, apperr.MissingParameter("name", appID)
	}
	tc := &models.Case{
		ID:          uuid.NewString(),
		AppID:       appID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.store.Cases.Create(ctx, tc); err != nil {
		return nil, err
	}
	return tc, nil
}

// GetCase returns the case with its blocks in execution order.
func (s *caseService) GetCase(ctx context.Context, appID, caseID string) (*models.Case, error) {
	tc, err := s.testCase(ctx, appID, caseID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.store.CaseBlocks.List(ctx, caseID)
	if err != nil {
		return nil, err
	}
	tc.Blocks = blocks
	return tc, nil
}

func (s *caseService) DeleteCase(ctx context.Context, appID, caseID string) error {
	if _, err := s.testCase(ctx, appID, caseID); err != nil {
		return err
	}
	return s.store.Cases.Delete(ctx, caseID)
}

// InsertBlock adds a block. Reference blocks must point at an existing action group;
// other kinds are stored as authored and rejected only when executed.
func (s *caseService) InsertBlock(ctx context.Context, appID, caseID string, req *CaseBlockRequest) (*models.CaseBlock, error) {
	if _, err := s.testCase(ctx, appID, caseID); err != nil {
		return nil, err
	}
	kind := req.Kind
	if kind == "" {
		kind = models.BlockKindReference
	}
	block := &models.CaseBlock{Kind: kind, Type: req.Type}
	if kind == models.BlockKindReference {
		if req.Reference == "" {
			return nil, apperr.MissingParameter("reference", caseID)
		}
		if _, err := s.store.ActionGroups.GetByID(ctx, req.Reference); err != nil {
			return nil, err
		}
	}
	if req.Reference != "" {
		ref := req.Reference
		block.Reference = &ref
	}
	return s.store.CaseBlocks.Insert(ctx, caseID, block, req.Position)
}

func (s *caseService) MoveBlock(ctx context.Context, appID, caseID, blockID string, position int) (*models.CaseBlock, error) {
	if err := s.ownsBlock(ctx, appID, caseID, blockID); err != nil {
		return nil, err
	}
	return s.store.CaseBlocks.Move(ctx, blockID, position)
}

func (s *caseService) DeleteBlock(ctx context.Context, appID, caseID, blockID string) error {
	if err := s.ownsBlock(ctx, appID, caseID, blockID); err != nil {
		return err
	}
	return s.store.CaseBlocks.Delete(ctx, blockID)
}

func (s *caseService) testCase(ctx context.Context, appID, caseID string) (*models.Case, error) {
	tc, err := s.store.Cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if tc.AppID != appID {
		return nil, apperr.NotFound("case", caseID)
	}
	return tc, nil
}

func (s *caseService) ownsBlock(ctx context.Context, appID, caseID, blockID string) error {
	if _, err := s.testCase(ctx, appID, caseID); err != nil {
		return err
	}
	block, err := s.store.CaseBlocks.Get(ctx, blockID)
	if err != nil {
		return err
	}
	if block.CaseID != caseID {
		return apperr.NotFound("case block", blockID)
	}
	return nil
}
