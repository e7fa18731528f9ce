package repository

import (
	"context"
	"errors"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"

	"gorm.io/gorm"
)

// CaseRepository 测试用例数据访问接口
type CaseRepository interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id string) (*models.Case, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Case, error)
	ListByApp(ctx context.Context, appID string) ([]models.Case, error)
	Delete(ctx context.Context, id string) error
}

type caseRepository struct {
	db *gorm.DB
}

// NewCaseRepository creates a new case repository
func NewCaseRepository(db *gorm.DB) CaseRepository {
	return &caseRepository{db: db}
}

func (r *caseRepository) Create(ctx context.Context, c *models.Case) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return apperr.Database("create case", err)
	}
	return nil
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*models.Case, error) {
	var c models.Case
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("case", id)
		}
		return nil, apperr.Database("query case", err)
	}
	return &c, nil
}

func (r *caseRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Case, error) {
	var cases []models.Case
	if len(ids) == 0 {
		return cases, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&cases).Error; err != nil {
		return nil, apperr.Database("query cases", err)
	}
	return cases, nil
}

func (r *caseRepository) ListByApp(ctx context.Context, appID string) ([]models.Case, error) {
	var cases []models.Case
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Order("name ASC").Find(&cases).Error; err != nil {
		return nil, apperr.Database("list cases", err)
	}
	return cases, nil
}

// Delete removes the case and its blocks.
func (r *caseRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("case_id = ?", id).Delete(&models.CaseBlock{}).Error; err != nil {
			return apperr.Database("delete case blocks", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Case{})
		if result.Error != nil {
			return apperr.Database("delete case", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("case", id)
		}
		return nil
	})
}
