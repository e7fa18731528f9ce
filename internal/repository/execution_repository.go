package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"

	"gorm.io/gorm"
)

// ExecutionRepository handles execution request data access
type ExecutionRepository interface {
	Create(ctx context.Context, er *models.ExecutionRequest) error
	Update(ctx context.Context, er *models.ExecutionRequest) error
	GetByID(ctx context.Context, id uint) (*models.ExecutionRequest, error)
	List(ctx context.Context, limit, offset int) ([]models.ExecutionRequest, int64, error)
}

type executionRepository struct {
	db *gorm.DB
}

// NewExecutionRepository creates a new repository
func NewExecutionRepository(db *gorm.DB) ExecutionRepository {
	return &executionRepository{db: db}
}

func (r *executionRepository) Create(ctx context.Context, er *models.ExecutionRequest) error {
	if err := r.db.WithContext(ctx).Create(er).Error; err != nil {
		return apperr.Database("create execution request", err)
	}
	return nil
}

func (r *executionRepository) Update(ctx context.Context, er *models.ExecutionRequest) error {
	if err := r.db.WithContext(ctx).Save(er).Error; err != nil {
		return apperr.Database("update execution request", err)
	}
	return nil
}

func (r *executionRepository) GetByID(ctx context.Context, id uint) (*models.ExecutionRequest, error) {
	var er models.ExecutionRequest
	if err := r.db.WithContext(ctx).First(&er, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("execution request", strconv.FormatUint(uint64(id), 10))
		}
		return nil, apperr.Database("query execution request", err)
	}
	return &er, nil
}

// List returns requests newest first together with the total count.
func (r *executionRepository) List(ctx context.Context, limit, offset int) ([]models.ExecutionRequest, int64, error) {
	var (
		ers   []models.ExecutionRequest
		total int64
	)
	db := r.db.WithContext(ctx).Model(&models.ExecutionRequest{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, apperr.Database("count execution requests", err)
	}
	query := r.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&ers).Error; err != nil {
		return nil, 0, apperr.Database("list execution requests", err)
	}
	return ers, total, nil
}
