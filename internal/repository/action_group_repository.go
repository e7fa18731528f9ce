package repository

import (
	"context"
	"errors"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"

	"gorm.io/gorm"
)

// ActionGroupRepository 动作组数据访问接口
type ActionGroupRepository interface {
	Create(ctx context.Context, group *models.ActionGroup) error
	GetByID(ctx context.Context, id string) (*models.ActionGroup, error)
	ListByApp(ctx context.Context, appID string) ([]models.ActionGroup, error)
	Delete(ctx context.Context, id string) error
}

type actionGroupRepository struct {
	db *gorm.DB
}

// NewActionGroupRepository creates a new action group repository
func NewActionGroupRepository(db *gorm.DB) ActionGroupRepository {
	return &actionGroupRepository{db: db}
}

func (r *actionGroupRepository) Create(ctx context.Context, group *models.ActionGroup) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return apperr.Database("create action group", err)
	}
	return nil
}

func (r *actionGroupRepository) GetByID(ctx context.Context, id string) (*models.ActionGroup, error) {
	var group models.ActionGroup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("action group", id)
		}
		return nil, apperr.Database("query action group", err)
	}
	return &group, nil
}

func (r *actionGroupRepository) ListByApp(ctx context.Context, appID string) ([]models.ActionGroup, error) {
	var groups []models.ActionGroup
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, apperr.Database("list action groups", err)
	}
	return groups, nil
}

// Delete removes the group and its actions.
func (r *actionGroupRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("action_group_id = ?", id).Delete(&models.Action{}).Error; err != nil {
			return apperr.Database("delete actions", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.ActionGroup{})
		if result.Error != nil {
			return apperr.Database("delete action group", result.Error)
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("action group", id)
		}
		return nil
	})
}
