package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/parthasarathygopu/orca/internal/apperr"
	"github.com/parthasarathygopu/orca/internal/engine"
	"github.com/parthasarathygopu/orca/internal/metrics"
	"github.com/parthasarathygopu/orca/internal/models"
	"github.com/parthasarathygopu/orca/internal/repository"
	"github.com/parthasarathygopu/orca/internal/service"
	"github.com/parthasarathygopu/orca/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	store := repository.NewStore(testutil.NewTestDB(t))
	registry := prometheus.NewRegistry()
	supervisor := engine.NewSupervisor(store, nil, engine.Options{Metrics: metrics.NewMetrics(registry)})
	return NewRouter(Services{
		Suites:       service.NewSuiteService(store),
		Cases:        service.NewCaseService(store),
		ActionGroups: service.NewActionGroupService(store),
		History:      service.NewHistoryService(store),
		Runs:         service.NewRunService(store, supervisor),
	}, nil, registry)
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAuthoringAndDryRunFlow(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/apps/app1/action-groups", gin.H{"name": "Open home"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	group := decode[models.ActionGroup](t, w)

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/action-groups/"+group.ID+"/actions",
		gin.H{"kind": "Open", "dataValue": "https://app.test"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/cases", gin.H{"name": "Home"})
	require.Equal(t, http.StatusCreated, w.Code)
	tc := decode[models.Case](t, w)

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/cases/"+tc.ID+"/blocks",
		gin.H{"type": "ActionGroup", "reference": group.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/suites", gin.H{"name": "Smoke"})
	require.Equal(t, http.StatusCreated, w.Code)
	suite := decode[models.Suite](t, w)

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/suites/"+suite.ID+"/blocks/batch",
		[]gin.H{{"reference": tc.ID}, {"reference": tc.ID}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	blocks := decode[[]models.SuiteBlock](t, w)
	require.Len(t, blocks, 2)

	w = do(t, r, http.MethodPut, "/api/v1/apps/app1/suites/"+suite.ID+"/blocks/"+blocks[1].ID+"/reorder",
		gin.H{"position": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[models.SuiteBlock](t, w).ExecutionOrder)

	w = do(t, r, http.MethodGet, "/api/v1/apps/app1/suites/"+suite.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[models.Suite](t, w)
	require.Len(t, info.Blocks, 2)
	assert.Equal(t, blocks[1].ID, info.Blocks[0].ID)
	assert.Equal(t, "Home", info.Blocks[0].Name)

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/suites/"+suite.ID+"/run?dryRun=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	er := decode[models.ExecutionRequest](t, w)
	assert.Equal(t, models.ExecutionCompleted, er.Status)
	assert.True(t, er.IsDryRun)

	w = do(t, r, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[struct {
		Data  []models.ExecutionRequest `json:"data"`
		Total int64                     `json:"total"`
	}](t, w)
	assert.EqualValues(t, 1, page.Total)

	w = do(t, r, http.MethodGet, "/api/v1/history/"+itoa(er.ID)+"/tree", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tree := decode[[]service.LogNode](t, w)
	require.Len(t, tree, 1)
	assert.Equal(t, models.LogTypeTestSuite, tree[0].Type)
	assert.Len(t, tree[0].Children, 2)

	w = do(t, r, http.MethodGet, "/api/v1/history/"+itoa(er.ID)+"/children?type=TestSuiteBlock&stepId="+blocks[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	children := decode[[]models.ItemLog](t, w)
	require.Len(t, children, 1)
	assert.Equal(t, models.LogTypeTestCase, children[0].Type)

	w = do(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `orca_runs_total{history_type="TestSuite",status="Completed"} 1`)
}

func TestErrorMapping(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/apps/app1/cases/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NotFound", decode[map[string]string](t, w)["kind"])

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/cases", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/history/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/cases", gin.H{"name": "Real"})
	tc := decode[models.Case](t, w)
	w = do(t, r, http.MethodPost, "/api/v1/apps/app1/cases/"+tc.ID+"/run", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "non dry run without a browser")
	assert.Equal(t, "Forbidden", decode[map[string]string](t, w)["kind"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.NotFound("case", "x"), http.StatusNotFound},
		{apperr.MissingParameter("name", ""), http.StatusBadRequest},
		{apperr.Forbidden("no", ""), http.StatusBadRequest},
		{apperr.Unsupported("Loop", ""), http.StatusUnprocessableEntity},
		{apperr.Driver("session", errors.New("refused")), http.StatusBadGateway},
		{apperr.Database("insert", errors.New("locked")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
