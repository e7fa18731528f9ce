package service

import (
	"context"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"

	"github.com/google/uuid"
)

// SuiteService 测试套件服务接口
type SuiteService interface {
	ListSuites(ctx context.Context, appID string) ([]models.Suite, error)
	CreateSuite(ctx context.Context, appID string, req *CreateSuiteRequest) (*models.Suite, error)
	DeleteSuite(ctx context.Context, appID, suiteID string) error
	GetSuiteInfo(ctx context.Context, appID, suiteID string) (*models.Suite, error)

	InsertBlock(ctx context.Context, appID, suiteID string, req *SuiteBlockRequest) (*models.SuiteBlock, error)
	BatchInsertBlocks(ctx context.Context, appID, suiteID string, reqs []SuiteBlockRequest) ([]*models.SuiteBlock, error)
	MoveBlock(ctx context.Context, appID, suiteID, blockID string, position int) (*models.SuiteBlock, error)
	DeleteBlock(ctx context.Context, appID, suiteID, blockID string) error
}

type suiteService struct {
	store *repository.Store
}

// NewSuiteService creates a new suite service
func NewSuiteService(store *repository.Store) SuiteService {
	return &suiteService{store: store}
}

// ===== Request DTOs =====

type CreateSuiteRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
}

// SuiteBlockRequest adds one case to a suite. ID is honored only by batch inserts.
type SuiteBlockRequest struct {
	ID        string                `json:"id"`
	Type      models.SuiteBlockType `json:"type"`
	Reference string                `json:"reference" binding:"required"`
	Position  *int                  `json:"position"`
}

type MoveBlockRequest struct {
	Position int `json:"position" binding:"required"`
}

// ===== Suite Operations =====

func (s *suiteService) ListSuites(ctx context.Context, appID string) ([]models.Suite, error) {
	return s.store.Suites.ListByApp(ctx, appID)
}

func (s *suiteService) CreateSuite(ctx context.Context, appID string, req *CreateSuiteRequest) (*models.Suite, error) {
	if req.Name == "" {
		return nil, apperr.MissingParameter("name", appID)
	}
	suite := &models.Suite{
		ID:          uuid.NewString(),
		AppID:       appID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.store.Suites.Create(ctx, suite); err != nil {
		return nil, err
	}
	return suite, nil
}

func (s *suiteService) DeleteSuite(ctx context.Context, appID, suiteID string) error {
	if _, err := s.suite(ctx, appID, suiteID); err != nil {
		return err
	}
	return s.store.Suites.Delete(ctx, suiteID)
}

// GetSuiteInfo returns the suite with its blocks in execution order, each carrying the
// name and description of the case it references.
func (s *suiteService) GetSuiteInfo(ctx context.Context, appID, suiteID string) (*models.Suite, error) {
	suite, err := s.suite(ctx, appID, suiteID)
	if err != nil {
		return nil, err
	}
	blocks, err := s.store.SuiteBlocks.List(ctx, suiteID)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, b := range blocks {
		if b.Reference != nil {
			ids = append(ids, *b.Reference)
		}
	}
	cases, err := s.store.Cases.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Case, len(cases))
	for _, c := range cases {
		byID[c.ID] = c
	}
	for i := range blocks {
		if blocks[i].Reference == nil {
			continue
		}
		if c, ok := byID[*blocks[i].Reference]; ok {
			blocks[i].Name = c.Name
			blocks[i].Description = c.Description
		}
	}

	suite.Blocks = blocks
	return suite, nil
}

// ===== Block Operations =====

func (s *suiteService) InsertBlock(ctx context.Context, appID, suiteID string, req *SuiteBlockRequest) (*models.SuiteBlock, error) {
	if _, err := s.suite(ctx, appID, suiteID); err != nil {
		return nil, err
	}
	block, err := s.newBlock(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.store.SuiteBlocks.Insert(ctx, suiteID, block, req.Position)
}

func (s *suiteService) BatchInsertBlocks(ctx context.Context, appID, suiteID string, reqs []SuiteBlockRequest) ([]*models.SuiteBlock, error) {
	if _, err := s.suite(ctx, appID, suiteID); err != nil {
		return nil, err
	}
	blocks := make([]*models.SuiteBlock, 0, len(reqs))
	for i := range reqs {
		block, err := s.newBlock(ctx, &reqs[i])
		if err != nil {
			return nil, err
		}
		block.ID = reqs[i].ID
		blocks = append(blocks, block)
	}
	return s.store.SuiteBlocks.InsertMany(ctx, suiteID, blocks)
}

func (s *suiteService) MoveBlock(ctx context.Context, appID, suiteID, blockID string, position int) (*models.SuiteBlock, error) {
	if _, err := s.block(ctx, appID, suiteID, blockID); err != nil {
		return nil, err
	}
	return s.store.SuiteBlocks.Move(ctx, blockID, position)
}

func (s *suiteService) DeleteBlock(ctx context.Context, appID, suiteID, blockID string) error {
	if _, err := s.block(ctx, appID, suiteID, blockID); err != nil {
		return err
	}
	return s.store.SuiteBlocks.Delete(ctx, blockID)
}

func (s *suiteService) newBlock(ctx context.Context, req *SuiteBlockRequest) (*models.SuiteBlock, error) {
	if req.Reference == "" {
		return nil, apperr.MissingParameter("reference", req.ID)
	}
	blockType := req.Type
	if blockType == "" {
		blockType = models.SuiteBlockTypeTestCase
	}
	if blockType != models.SuiteBlockTypeTestCase {
		return nil, apperr.Unsupported("suite block type "+string(blockType), req.ID)
	}
	if _, err := s.store.Cases.GetByID(ctx, req.Reference); err != nil {
		return nil, err
	}
	ref := req.Reference
	return &models.SuiteBlock{Type: blockType, Reference: &ref}, nil
}

// suite loads suiteID and checks that it belongs to appID.
func (s *suiteService) suite(ctx context.Context, appID, suiteID string) (*models.Suite, error) {
	suite, err := s.store.Suites.GetByID(ctx, suiteID)
	if err != nil {
		return nil, err
	}
	if suite.AppID != appID {
		return nil, apperr.NotFound("suite", suiteID)
	}
	return suite, nil
}

func (s *suiteService) block(ctx context.Context, appID, suiteID, blockID string) (*models.SuiteBlock, error) {
	if _, err := s.suite(ctx, appID, suiteID); err != nil {
		return nil, err
	}
	block, err := s.store.SuiteBlocks.Get(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if block.SuiteID != suiteID {
		return nil, apperr.NotFound("suite block", blockID)
	}
	return block, nil
}
