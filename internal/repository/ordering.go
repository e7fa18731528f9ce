package repository

import (
	"context"
	"errors"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderingEngine keeps execution_order dense inside a scope (suite, case or action group).
// Every mutation runs in one transaction, or a savepoint when db is already a transaction,
// so the interval shift and the relocation are never visible separately.
type OrderingEngine[T any, PT interface {
	*T
	models.OrderedBlock
}] struct {
	db   *gorm.DB
	name string
}

type (
	SuiteBlockOrdering = OrderingEngine[models.SuiteBlock, *models.SuiteBlock]
	CaseBlockOrdering  = OrderingEngine[models.CaseBlock, *models.CaseBlock]
	ActionOrdering     = OrderingEngine[models.Action, *models.Action]
)

func NewSuiteBlockOrdering(db *gorm.DB) *SuiteBlockOrdering {
	return &SuiteBlockOrdering{db: db, name: "suite block"}
}

func NewCaseBlockOrdering(db *gorm.DB) *CaseBlockOrdering {
	return &CaseBlockOrdering{db: db, name: "case block"}
}

func NewActionOrdering(db *gorm.DB) *ActionOrdering {
	return &ActionOrdering{db: db, name: "action"}
}

func (o *OrderingEngine[T, PT]) probe() PT {
	return PT(new(T))
}

func (o *OrderingEngine[T, PT]) inScope(tx *gorm.DB, scopeID string) *gorm.DB {
	p := o.probe()
	return tx.Model(p).Where(p.ScopeColumn()+" = ?", scopeID)
}

// lastIndex is one past the highest order in scope, 1 for an empty scope.
func (o *OrderingEngine[T, PT]) lastIndex(tx *gorm.DB, scopeID string) (int, error) {
	var max int64
	if err := o.inScope(tx, scopeID).Select("COALESCE(MAX(execution_order), 0)").Scan(&max).Error; err != nil {
		return 0, apperr.Database("read max "+o.name+" order", err)
	}
	return int(max) + 1, nil
}

// Insert places block at position inside scopeID. A nil position, or one past the end,
// appends. Blocks at or after the position move up by one. The block always gets a
// fresh identifier.
func (o *OrderingEngine[T, PT]) Insert(ctx context.Context, scopeID string, block PT, position *int) (PT, error) {
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		last, err := o.lastIndex(tx, scopeID)
		if err != nil {
			return err
		}

		pos := last
		if position != nil && *position < last {
			pos = *position
			if pos < 1 {
				pos = 1
			}
		}

		if pos < last {
			if err := o.inScope(tx, scopeID).
				Where("execution_order >= ?", pos).
				UpdateColumn("execution_order", gorm.Expr("execution_order + 1")).Error; err != nil {
				return apperr.Database("shift "+o.name+"s", err)
			}
		}

		block.SetID(uuid.NewString())
		block.SetScopeID(scopeID)
		block.SetOrder(pos)
		if err := tx.Create(block).Error; err != nil {
			return apperr.Database("insert "+o.name, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// InsertMany appends blocks in the given order. Blocks without an identifier get one.
func (o *OrderingEngine[T, PT]) InsertMany(ctx context.Context, scopeID string, blocks []PT) ([]PT, error) {
	if len(blocks) == 0 {
		return blocks, nil
	}
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		last, err := o.lastIndex(tx, scopeID)
		if err != nil {
			return err
		}
		for i, block := range blocks {
			if block.GetID() == "" {
				block.SetID(uuid.NewString())
			}
			block.SetScopeID(scopeID)
			block.SetOrder(last + i)
		}
		if err := tx.Create(blocks).Error; err != nil {
			return apperr.Database("insert "+o.name+"s", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

// Move relocates a block to newPosition, clamped to the occupied range. The blocks in
// between shift one step toward the vacated position. Moving to the current position
// writes nothing.
func (o *OrderingEngine[T, PT]) Move(ctx context.Context, id string, newPosition int) (PT, error) {
	block := o.probe()
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(block).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(o.name, id)
			}
			return apperr.Database("load "+o.name, err)
		}

		scopeID := block.ScopeID()
		last, err := o.lastIndex(tx, scopeID)
		if err != nil {
			return err
		}
		pos := newPosition
		if pos > last-1 {
			pos = last - 1
		}
		if pos < 1 {
			pos = 1
		}

		old := block.GetOrder()
		if pos == old {
			return nil
		}

		shift := o.inScope(tx, scopeID)
		if pos > old {
			shift = shift.Where("execution_order > ? AND execution_order <= ?", old, pos).
				UpdateColumn("execution_order", gorm.Expr("execution_order - 1"))
		} else {
			shift = shift.Where("execution_order >= ? AND execution_order < ?", pos, old).
				UpdateColumn("execution_order", gorm.Expr("execution_order + 1"))
		}
		if shift.Error != nil {
			return apperr.Database("shift "+o.name+"s", shift.Error)
		}

		if err := tx.Model(o.probe()).Where("id = ?", id).UpdateColumn("execution_order", pos).Error; err != nil {
			return apperr.Database("move "+o.name, err)
		}
		block.SetOrder(pos)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// Delete removes a block. Remaining orders are not compacted, so a scope may hold gaps
// after a delete.
func (o *OrderingEngine[T, PT]) Delete(ctx context.Context, id string) error {
	result := o.db.WithContext(ctx).Where("id = ?", id).Delete(o.probe())
	if result.Error != nil {
		return apperr.Database("delete "+o.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound(o.name, id)
	}
	return nil
}

// Get loads one block by id.
func (o *OrderingEngine[T, PT]) Get(ctx context.Context, id string) (PT, error) {
	block := o.probe()
	if err := o.db.WithContext(ctx).Where("id = ?", id).First(block).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(o.name, id)
		}
		return nil, apperr.Database("load "+o.name, err)
	}
	return block, nil
}

// List returns all blocks of a scope in ascending order.
func (o *OrderingEngine[T, PT]) List(ctx context.Context, scopeID string) ([]T, error) {
	var blocks []T
	p := o.probe()
	if err := o.db.WithContext(ctx).
		Where(p.ScopeColumn()+" = ?", scopeID).
		Order("execution_order ASC").
		Find(&blocks).Error; err != nil {
		return nil, apperr.Database("list "+o.name+"s", err)
	}
	return blocks, nil
}

// Cursor pages through a scope in ascending order.
func (o *OrderingEngine[T, PT]) Cursor(scopeID string, pageSize int) *Cursor[T] {
	column := o.probe().ScopeColumn()
	return NewCursor[T](o.db, o.name+"s", pageSize, func(tx *gorm.DB) *gorm.DB {
		return tx.Where(column+" = ?", scopeID).Order("execution_order ASC").Order("id ASC")
	})
}
