package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"
	"github.com/parthasarathygopu/orca/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureJSON = `{
  "actionGroups": [
    {"id": "ag-login", "appId": "shop", "name": "Login", "actions": [
      {"kind": "Open", "dataValue": "https://shop.test/login", "executionOrder": 9},
      {"kind": "Enter", "dataValue": "alice", "targetKind": "Id", "targetValue": "user"},
      {"kind": "Click", "dataValue": "#submit", "targetKind": "Css"}
    ]}
  ],
  "cases": [
    {"id": "case-login", "appId": "shop", "name": "Login works", "blocks": [
      {"type": "ActionGroup", "reference": "ag-login"}
    ]}
  ],
  "suites": [
    {"id": "suite-smoke", "appId": "shop", "name": "Smoke", "cases": ["case-login", "case-login"]}
  ]
}`

func writeFixture(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "fixture.json")
	require.NoError(t, os.WriteFile(path, []byte(fixtureJSON), 0644))
	return path
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(testutil.NewTestDB(t))
	f, err := LoadFile(writeFixture(t))
	require.NoError(t, err)

	report, err := Import(ctx, store, f)
	require.NoError(t, err)
	assert.Equal(t, Report{Created: 3}, report)

	actions, err := store.Actions.List(ctx, "ag-login")
	require.NoError(t, err)
	require.Len(t, actions, 3)
	for i, a := range actions {
		assert.Equal(t, i+1, a.ExecutionOrder)
		assert.NotEmpty(t, a.ID)
	}
	assert.Equal(t, models.ActionOpen, actions[0].Kind)

	blocks, err := store.CaseBlocks.List(ctx, "case-login")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, models.BlockKindReference, blocks[0].Kind)

	suiteBlocks, err := store.SuiteBlocks.List(ctx, "suite-smoke")
	require.NoError(t, err)
	require.Len(t, suiteBlocks, 2)
	assert.Equal(t, "case-login", *suiteBlocks[1].Reference)

	report, err = Import(ctx, store, f)
	require.NoError(t, err)
	assert.Equal(t, Report{Skipped: 3}, report)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read data file")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "failed to parse JSON")
}
