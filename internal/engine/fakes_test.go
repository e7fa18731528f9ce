package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/parthasarathygopu/orca/internal/browser"
	"github.com/parthasarathygopu/orca/internal/evidence"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"
	"github.com/parthasarathygopu/orca/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var errNoSuchElement = errors.New("no such element")

// fakeDriver is an in-memory browser. Elements are keyed by locator value.
type fakeDriver struct {
	mu       sync.Mutex
	calls    []string
	texts    map[string]string
	missing  map[string]bool
	closed   bool
	shotErr  error
	openHook func(ctx context.Context) error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{texts: map[string]string{}, missing: map[string]bool{}}
}

func (d *fakeDriver) record(call string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, call)
}

func (d *fakeDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDriver) Open(ctx context.Context, url string) error {
	d.record("open " + url)
	if d.openHook != nil {
		return d.openHook(ctx)
	}
	return nil
}

func (d *fakeDriver) FindElement(_ context.Context, by browser.By) (browser.Element, error) {
	d.record("find " + by.String())
	if d.missing[by.Value] {
		return nil, errNoSuchElement
	}
	return &fakeElement{driver: d, key: by.Value}, nil
}

func (d *fakeDriver) Screenshot(context.Context) ([]byte, error) {
	d.record("screenshot")
	if d.shotErr != nil {
		return nil, d.shotErr
	}
	return []byte("png"), nil
}

func (d *fakeDriver) Close(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

type fakeElement struct {
	driver *fakeDriver
	key    string
}

func (e *fakeElement) SendKeys(_ context.Context, text string) error {
	e.driver.record("keys " + e.key + "=" + text)
	return nil
}

func (e *fakeElement) Click(context.Context) error {
	e.driver.record("click " + e.key)
	return nil
}

func (e *fakeElement) DoubleClick(context.Context) error {
	e.driver.record("dblclick " + e.key)
	return nil
}

func (e *fakeElement) Text(context.Context) (string, error) {
	e.driver.record("text " + e.key)
	return e.driver.texts[e.key], nil
}

// fakeFactory hands out one driver.
type fakeFactory struct {
	driver   *fakeDriver
	err      error
	sessions int
}

func (f *fakeFactory) NewSession(context.Context) (browser.Driver, error) {
	f.sessions++
	if f.err != nil {
		return nil, f.err
	}
	return f.driver, nil
}

// recordingSink collects broadcast events.
type recordingSink struct {
	mu     sync.Mutex
	events []string
}

func (s *recordingSink) Broadcast(runID string, msgType string, _ interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, runID+":"+msgType)
}

func (s *recordingSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// fakeEvidence keeps uploads in memory.
type fakeEvidence struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (e *fakeEvidence) Put(_ context.Context, key string, data []byte, _ string) (evidence.Object, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return evidence.Object{}, e.err
	}
	if e.objects == nil {
		e.objects = map[string][]byte{}
	}
	e.objects[key] = data
	return evidence.Object{Bucket: "evidence-bucket", Key: key, Size: int64(len(data))}, nil
}

// fixture builds authored artifacts through the ordering engine.
type fixture struct {
	t     *testing.T
	db    *gorm.DB
	store *repository.Store
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewTestDB(t)
	return &fixture{t: t, db: db, store: repository.NewStore(db)}
}

// newFileFixture uses a WAL sqlite file whose writers give up on the lock after
// busyMs milliseconds.
func newFileFixture(t *testing.T, busyMs int) *fixture {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", filepath.Join(t.TempDir(), "orca.db"), busyMs)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &fixture{t: t, db: db, store: repository.NewStore(db)}
}

func sp(s string) *string { return &s }

func tk(k models.TargetKind) *models.TargetKind { return &k }

func (f *fixture) actionGroup(id string, actions ...models.Action) string {
	ctx := context.Background()
	require.NoError(f.t, f.store.ActionGroups.Create(ctx, &models.ActionGroup{ID: id, AppID: "app", Name: id}))
	for i := range actions {
		a := actions[i]
		_, err := f.store.Actions.Insert(ctx, id, &a, nil)
		require.NoError(f.t, err)
	}
	return id
}

func (f *fixture) testCase(id string, blocks ...models.CaseBlock) string {
	ctx := context.Background()
	require.NoError(f.t, f.store.Cases.Create(ctx, &models.Case{ID: id, AppID: "app", Name: id}))
	for i := range blocks {
		b := blocks[i]
		_, err := f.store.CaseBlocks.Insert(ctx, id, &b, nil)
		require.NoError(f.t, err)
	}
	return id
}

func (f *fixture) suite(id string, caseIDs ...string) string {
	ctx := context.Background()
	require.NoError(f.t, f.store.Suites.Create(ctx, &models.Suite{ID: id, AppID: "app", Name: id}))
	for _, caseID := range caseIDs {
		_, err := f.store.SuiteBlocks.Insert(ctx, id, &models.SuiteBlock{
			Type:      models.SuiteBlockTypeTestCase,
			Reference: sp(caseID),
		}, nil)
		require.NoError(f.t, err)
	}
	return id
}

func refBlock(groupID string) models.CaseBlock {
	return models.CaseBlock{Kind: models.BlockKindReference, Type: models.BlockTypeActionGroup, Reference: sp(groupID)}
}

func openAction(url string) models.Action {
	return models.Action{Kind: models.ActionOpen, DataValue: sp(url)}
}

func clickAction(css string) models.Action {
	return models.Action{Kind: models.ActionClick, DataValue: sp(css), TargetKind: tk(models.TargetCss)}
}

func enterAction(text, id string) models.Action {
	return models.Action{Kind: models.ActionEnter, DataValue: sp(text), TargetKind: tk(models.TargetID), TargetValue: sp(id)}
}

// logs returns every item log of a request in insertion order.
func (f *fixture) logs(erID uint) []models.ItemLog {
	logs, err := f.store.ItemLogs.ListByExecution(context.Background(), erID)
	require.NoError(f.t, err)
	return logs
}

func ofType(logs []models.ItemLog, logType models.ItemLogType) []models.ItemLog {
	var out []models.ItemLog
	for _, l := range logs {
		if l.Type == logType {
			out = append(out, l)
		}
	}
	return out
}
