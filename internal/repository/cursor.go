package repository

import (
	"context"

	"github.com/parthasarathygopu/orca/internal/apperr"

	"gorm.io/gorm"
)

// Cursor walks an ordered query page by page. It is forward-only and finite; Reset
// restarts it from the first row. Pages are read lazily, so rows inserted ahead of the
// cursor position become visible to it.
type Cursor[T any] struct {
	db       *gorm.DB
	scope    func(*gorm.DB) *gorm.DB
	what     string
	pageSize int

	offset int
	page   []T
	idx    int
	done   bool
}

// NewCursor builds a cursor over the rows selected by scope, which must apply a
// deterministic ORDER BY.
func NewCursor[T any](db *gorm.DB, what string, pageSize int, scope func(*gorm.DB) *gorm.DB) *Cursor[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Cursor[T]{db: db, scope: scope, what: what, pageSize: pageSize}
}

// Next returns the next row, or ok=false once the sequence is exhausted.
func (c *Cursor[T]) Next(ctx context.Context) (*T, bool, error) {
	if c.idx < len(c.page) {
		item := &c.page[c.idx]
		c.idx++
		return item, true, nil
	}
	if c.done {
		return nil, false, nil
	}

	var page []T
	if err := c.scope(c.db.WithContext(ctx)).Offset(c.offset).Limit(c.pageSize).Find(&page).Error; err != nil {
		return nil, false, apperr.Database("page "+c.what, err)
	}
	c.offset += len(page)
	c.page = page
	c.idx = 0
	if len(page) < c.pageSize {
		c.done = true
	}
	if len(page) == 0 {
		return nil, false, nil
	}
	c.idx = 1
	return &c.page[0], true, nil
}

// Reset rewinds the cursor to the first row.
func (c *Cursor[T]) Reset() {
	c.offset = 0
	c.page = nil
	c.idx = 0
	c.done = false
}

// PageSize reports the configured batch size.
func (c *Cursor[T]) PageSize() int {
	return c.pageSize
}
