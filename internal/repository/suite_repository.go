package repository

import (
	"context"
	"errors"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"

	"gorm.io/gorm"
)

// SuiteRepository 测试套件数据访问接口
type SuiteRepository interface {
	Create(ctx context.Context, suite *models.Suite) error
	GetByID(ctx context.Context, id string) (*models.Suite, error)
	ListByApp(ctx context.Context, appID string) ([]models.Suite, error)
	Delete(ctx context.Context, id string) error
}

type suiteRepository struct {
	db *gorm.DB
}

// NewSuiteRepository creates a new suite repository
func NewSuiteRepository(db *gorm.DB) SuiteRepository {
	return &suiteRepository{db: db}
}

func (r *suiteRepository) Create(ctx context.Context, suite *models.Suite) error {
	if err := r.db.WithContext(ctx).Create(suite).Error; err != nil {
		return apperr.Database("create suite", err)
	}
	return nil
}

func (r *suiteRepository) GetByID(ctx context.Context, id string) (*models.Suite, error) {
	var suite models.Suite
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&suite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("suite", id)
		}
		return nil, apperr.Database("query suite", err)
	}
	return &suite, nil
}

func (r *suiteRepository) ListByApp(ctx context.Context, appID string) ([]models.Suite, error) {
	var suites []models.Suite
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Order("name ASC").Find(&suites).Error; err != nil {
		return nil, apperr.Database("list suites", err)
	}
	return suites, nil
}

// Delete removes the suite and its blocks.
func (r *suiteRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("suite_id = ?", id).Delete(&models.SuiteBlock{}).Error; err != nil {
			return apperr.Database("delete suite blocks", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Suite{})
		if result.Error != nil {
			return apperr.Database("delete suite", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("suite", id)
		}
		return nil
	})
}
