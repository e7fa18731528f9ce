package repository

import (
	"context"
	"testing"

	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain[T any](t *testing.T, c *Cursor[T]) []T {
	var out []T
	for {
		item, ok, err := c.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, *item)
	}
}

func TestCursor_PagesInOrder(t *testing.T) {
	db := testutil.NewTestDB(t)
	suiteID, ids := seedSuite(t, db, 7)

	cursor := NewSuiteBlockOrdering(db).Cursor(suiteID, 3)
	blocks := drain(t, cursor)

	require.Len(t, blocks, 7)
	for i, b := range blocks {
		assert.Equal(t, ids[i], b.ID)
		assert.Equal(t, i+1, b.ExecutionOrder)
	}

	_, ok, err := cursor.Next(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCursor_ExactPageMultiple(t *testing.T) {
	db := testutil.NewTestDB(t)
	suiteID, _ := seedSuite(t, db, 4)

	blocks := drain(t, NewSuiteBlockOrdering(db).Cursor(suiteID, 2))
	assert.Len(t, blocks, 4)
}

func TestCursor_Reset(t *testing.T) {
	db := testutil.NewTestDB(t)
	suiteID, ids := seedSuite(t, db, 3)

	cursor := NewSuiteBlockOrdering(db).Cursor(suiteID, 2)
	first := drain(t, cursor)
	cursor.Reset()
	second := drain(t, cursor)

	assert.Equal(t, first, second)
	assert.Equal(t, ids[0], second[0].ID)
}

func TestCursor_SeesRowsAppendedAhead(t *testing.T) {
	db := testutil.NewTestDB(t)
	suiteID, _ := seedSuite(t, db, 2)
	engine := NewSuiteBlockOrdering(db)

	cursor := engine.Cursor(suiteID, 2)
	_, ok, err := cursor.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	_, err = engine.Insert(context.Background(), suiteID, &models.SuiteBlock{Type: models.SuiteBlockTypeTestCase}, nil)
	require.NoError(t, err)

	rest := drain(t, cursor)
	assert.Len(t, rest, 2)
}

func TestCursor_EmptyScope(t *testing.T) {
	db := testutil.NewTestDB(t)

	blocks := drain(t, NewActionOrdering(db).Cursor("nothing", 50))
	assert.Empty(t, blocks)
}
