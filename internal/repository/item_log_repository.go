package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"

	"gorm.io/gorm"
)

// ItemLogRepository handles audit log data access. Logs are append-only: a log is
// inserted once and finished once.
type ItemLogRepository interface {
	Create(ctx context.Context, log *models.ItemLog) error
	Finish(ctx context.Context, log *models.ItemLog) error
	GetByID(ctx context.Context, id uint) (*models.ItemLog, error)
	ListByExecution(ctx context.Context, erID uint) ([]models.ItemLog, error)
	FindByStep(ctx context.Context, erID uint, logType models.ItemLogType, stepID string) (*models.ItemLog, error)
	ListChildren(ctx context.Context, erID, parentID uint, types ...models.ItemLogType) ([]models.ItemLog, error)
}

type itemLogRepository struct {
	db *gorm.DB
}

// NewItemLogRepository creates a new repository
func NewItemLogRepository(db *gorm.DB) ItemLogRepository {
	return &itemLogRepository{db: db}
}

func (r *itemLogRepository) Create(ctx context.Context, log *models.ItemLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return apperr.Database("create item log", err)
	}
	return nil
}

// Finish writes the terminal status, finish time, elapsed time and message.
func (r *itemLogRepository) Finish(ctx context.Context, log *models.ItemLog) error {
	err := r.db.WithContext(ctx).Model(&models.ItemLog{}).Where("id = ?", log.ID).Updates(map[string]interface{}{
		"status":         log.Status,
		"finished_at":    log.FinishedAt,
		"execution_time": log.ExecutionTime,
		"message":        log.Message,
	}).Error
	if err != nil {
		return apperr.Database("finish item log", err)
	}
	return nil
}

func (r *itemLogRepository) GetByID(ctx context.Context, id uint) (*models.ItemLog, error) {
	var log models.ItemLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item log", strconv.FormatUint(uint64(id), 10))
		}
		return nil, apperr.Database("query item log", err)
	}
	return &log, nil
}

func (r *itemLogRepository) ListByExecution(ctx context.Context, erID uint) ([]models.ItemLog, error) {
	var logs []models.ItemLog
	if err := r.db.WithContext(ctx).Where("execution_request_id = ?", erID).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, apperr.Database("list item logs", err)
	}
	return logs, nil
}

// FindByStep finds the log of the given type written for stepID within a request.
func (r *itemLogRepository) FindByStep(ctx context.Context, erID uint, logType models.ItemLogType, stepID string) (*models.ItemLog, error) {
	var log models.ItemLog
	err := r.db.WithContext(ctx).
		Where("execution_request_id = ? AND type = ? AND step_id = ?", erID, logType, stepID).
		Order("id ASC").
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(string(logType)+" log", stepID)
		}
		return nil, apperr.Database("query item log", err)
	}
	return &log, nil
}

func (r *itemLogRepository) ListChildren(ctx context.Context, erID, parentID uint, types ...models.ItemLogType) ([]models.ItemLog, error) {
	var logs []models.ItemLog
	query := r.db.WithContext(ctx).Where("execution_request_id = ? AND parent_id = ?", erID, parentID)
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	if err := query.Order("id ASC").Find(&logs).Error; err != nil {
		return nil, apperr.Database("list child item logs", err)
	}
	return logs, nil
}
