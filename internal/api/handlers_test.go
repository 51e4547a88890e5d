package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miradorstack/aura/internal/cache"
	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/session"
	"github.com/miradorstack/aura/internal/tools"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	source := catalog.Default()
	executor := tools.NewExecutor(tools.NewFacade(source))
	sessions := session.NewManager(source, cache.NewMemoryProvider())
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	return NewGateway(source, executor, sessions, metrics).NewRouter()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListScenarios(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 3)
}

func TestGetScenarioUnknownListsTypes(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/scenarios/disk_full", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error          string   `json:"error"`
		AvailableTypes []string `json:"available_types"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.AvailableTypes, "cost_anomaly")
	assert.Contains(t, body.Error, "disk_full")

	rec = doJSON(t, router, http.MethodGet, "/api/scenarios/cost_spike", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"cost_anomaly"`)
}

func TestInvokeTool(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/tools/process_cloud_alert", map[string]any{"alert_type": "cost_anomaly"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Call-ID"))
	assert.Contains(t, rec.Body.String(), `"alert_processed": true`)

	rec = doJSON(t, router, http.MethodPost, "/api/tools/process_cloud_alert", map[string]any{"alert_type": "disk_full"})
	require.Equal(t, http.StatusOK, rec.Code, "unknown scenarios are reported in the payload")
	assert.Contains(t, rec.Body.String(), "available_types")

	rec = doJSON(t, router, http.MethodPost, "/api/tools/reboot_everything", map[string]any{"alert_type": "cost_anomaly"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), tools.ToolSimulateExecution)
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, models.StateIdle, created.View.State)

	base := "/api/sessions/" + created.SessionID
	rec = doJSON(t, router, http.MethodPost, base+"/actions/detect", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "detect before select")

	rec = doJSON(t, router, http.MethodPut, base+"/scenario", map[string]string{"scenario": "security_breach"})
	require.Equal(t, http.StatusOK, rec.Code)

	for _, trig := range []string{"detect", "start_analysis", "propose_plan", "approve"} {
		rec = doJSON(t, router, http.MethodPost, base+"/actions/"+trig, nil)
		require.Equal(t, http.StatusOK, rec.Code, trig)
	}

	rec = doJSON(t, router, http.MethodGet, base+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, models.StateDone, state.View.State)
	assert.Equal(t, catalog.SecurityVulnerability, state.View.Scenario)
	require.NotNil(t, state.View.Impact)

	rec = doJSON(t, router, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doJSON(t, router, http.MethodGet, base+"/state", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectScenarioValidation(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/sessions", nil)
	var created ViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPut, "/api/sessions/"+created.SessionID+"/scenario", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/sessions/"+created.SessionID+"/scenario", map[string]string{"scenario": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)
	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodGet, "/metrics", nil).Code)
}
