package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles every repository over one *gorm.DB handle. A Store built from a
// transaction routes every read and write through that transaction.
type Store struct {
	db *gorm.DB

	Suites       SuiteRepository
	Cases        CaseRepository
	ActionGroups ActionGroupRepository
	Executions   ExecutionRepository
	ItemLogs     ItemLogRepository
	Attachments  AttachmentRepository

	SuiteBlocks *SuiteBlockOrdering
	CaseBlocks  *CaseBlockOrdering
	Actions     *ActionOrdering
}

// NewStore creates a store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		Suites:       NewSuiteRepository(db),
		Cases:        NewCaseRepository(db),
		ActionGroups: NewActionGroupRepository(db),
		Executions:   NewExecutionRepository(db),
		ItemLogs:     NewItemLogRepository(db),
		Attachments:  NewAttachmentRepository(db),
		SuiteBlocks:  NewSuiteBlockOrdering(db),
		CaseBlocks:   NewCaseBlockOrdering(db),
		Actions:      NewActionOrdering(db),
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn with a store bound to a single transaction. Returning an error
// from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
