//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_OrderingAndHistory(t *testing.T) {
	db := testutil.NewPostgresDB(t)
	ctx := context.Background()
	store := NewStore(db)

	require.NoError(t, store.Cases.Create(ctx, &models.Case{ID: "c-pg", AppID: "app", Name: "Login"}))
	var ids []string
	for i := 0; i < 3; i++ {
		block, err := store.CaseBlocks.Insert(ctx, "c-pg", &models.CaseBlock{
			Kind: models.BlockKindReference,
			Type: models.BlockTypeActionGroup,
		}, intPtr(1))
		require.NoError(t, err)
		ids = append(ids, block.ID)
	}

	_, err := store.CaseBlocks.Move(ctx, ids[0], 3)
	require.NoError(t, err)

	blocks, err := store.CaseBlocks.List(ctx, "c-pg")
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, ids[1], blocks[0].ID)
	assert.Equal(t, ids[2], blocks[1].ID)
	assert.Equal(t, ids[0], blocks[2].ID)

	er := &models.ExecutionRequest{
		Reference:   "c-pg",
		HistoryType: models.HistoryTypeTestCase,
		Kind:        models.ExecutionKindTrigger,
		Status:      models.ExecutionStarted,
		Summary:     map[string]interface{}{"total": 3},
		TriggeredAt: time.Now(),
	}
	require.NoError(t, store.Executions.Create(ctx, er))

	loaded, err := store.Executions.GetByID(ctx, er.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, loaded.Summary["total"])
}

// A failed statement aborts a postgres transaction unless it ran in a savepoint.
func TestPostgres_RejectedAttachmentKeepsTransaction(t *testing.T) {
	rejectedAttachmentKeepsTransaction(t, testutil.NewPostgresDB(t))
}
