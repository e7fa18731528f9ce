package repository

import (
	"context"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"

	"gorm.io/gorm"
)

// AttachmentRepository handles evidence attachment records
type AttachmentRepository interface {
	Create(ctx context.Context, a *models.Attachment) error
	ListByExecution(ctx context.Context, erID uint) ([]models.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new repository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

// Create runs in its own savepoint when called inside a run's transaction, so a
// rejected attachment leaves the enclosing transaction usable.
func (r *attachmentRepository) Create(ctx context.Context, a *models.Attachment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(a).Error
	})
	if err != nil {
		return apperr.Database("create attachment", err)
	}
	return nil
}

func (r *attachmentRepository) ListByExecution(ctx context.Context, erID uint) ([]models.Attachment, error) {
	var attachments []models.Attachment
	if err := r.db.WithContext(ctx).Where("execution_request_id = ?", erID).Order("created_at ASC").Find(&attachments).Error; err != nil {
		return nil, apperr.Database("list attachments", err)
	}
	return attachments, nil
}
