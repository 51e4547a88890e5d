package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/miradorstack/aura/internal/tools"
)

func abortWithError(c *gin.Context, err error) {
	code, body := httpError(err)
	c.AbortWithStatusJSON(code, body)
}

// HealthHandler handles GET /health.
func (g *Gateway) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "SERVING"})
}

// ListScenariosHandler handles GET /api/scenarios.
// It returns the metadata of every scenario in the catalog.
func (g *Gateway) ListScenariosHandler(c *gin.Context) {
	type scenarioMetadata struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Severity string   `json:"severity"`
		Aliases  []string `json:"aliases,omitempty"`
	}
	all := g.catalog.Current().All()
	metadata := make([]scenarioMetadata, len(all))
	for i, s := range all {
		metadata[i] = scenarioMetadata{
			ID:       string(s.ID),
			Title:    s.Title,
			Severity: string(s.Alert.Severity),
			Aliases:  s.Aliases,
		}
	}
	c.JSON(http.StatusOK, metadata)
}

// GetScenarioHandler handles GET /api/scenarios/:id.
func (g *Gateway) GetScenarioHandler(c *gin.Context) {
	s, err := g.catalog.Current().Lookup(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// ListToolsHandler handles GET /api/tools.
func (g *Gateway) ListToolsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tools": g.executor.ListTools()})
}

// InvokeToolHandler handles POST /api/tools/:name. The body holds the tool
// arguments, for example {"alert_type": "cost_anomaly"}.
func (g *Gateway) InvokeToolHandler(c *gin.Context) {
	var args map[string]any
	if err := c.ShouldBindJSON(&args); err != nil {
		abortWithError(c, errors.Join(ErrInvalidRequest, err))
		return
	}
	res, err := g.executor.Execute(c.Request.Context(), tools.ToolCall{
		ID:        c.GetHeader("X-Call-ID"),
		Name:      c.Param("name"),
		Arguments: args,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("X-Call-ID", res.CallID)
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(res.Content))
}

// CreateSessionHandler handles POST /api/sessions.
func (g *Gateway) CreateSessionHandler(c *gin.Context) {
	id, view, err := g.sessions.Create(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ViewResponse{SessionID: id, View: view})
}

// SelectScenarioHandler handles PUT /api/sessions/:id/scenario.
func (g *Gateway) SelectScenarioHandler(c *gin.Context) {
	var body struct {
		Scenario string `json:"scenario" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, errors.Join(ErrInvalidRequest, err))
		return
	}
	id := c.Param("id")
	view, err := g.sessions.Select(c.Request.Context(), id, body.Scenario)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewResponse{SessionID: id, View: view})
}

// AdvanceHandler handles POST /api/sessions/:id/actions/:trigger.
func (g *Gateway) AdvanceHandler(c *gin.Context) {
	id := c.Param("id")
	view, err := g.sessions.Advance(c.Request.Context(), id, c.Param("trigger"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewResponse{SessionID: id, View: view})
}

// GetStateHandler handles GET /api/sessions/:id/state.
func (g *Gateway) GetStateHandler(c *gin.Context) {
	id := c.Param("id")
	view, err := g.sessions.View(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewResponse{SessionID: id, View: view})
}

// ResetSessionHandler handles POST /api/sessions/:id/reset.
func (g *Gateway) ResetSessionHandler(c *gin.Context) {
	id := c.Param("id")
	view, err := g.sessions.Reset(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ViewResponse{SessionID: id, View: view})
}

// CloseSessionHandler handles DELETE /api/sessions/:id.
func (g *Gateway) CloseSessionHandler(c *gin.Context) {
	if err := g.sessions.Close(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
