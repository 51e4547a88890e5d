package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/tools"
)

// Sessions is the session surface shared by the gRPC service and the HTTP gateway.
type Sessions interface {
	Create(ctx context.Context) (string, models.View, error)
	Select(ctx context.Context, id, scenario string) (models.View, error)
	Advance(ctx context.Context, id, trigger string) (models.View, error)
	View(ctx context.Context, id string) (models.View, error)
	Reset(ctx context.Context, id string) (models.View, error)
	Close(ctx context.Context, id string) error
}

// Gateway serves the JSON API consumed by dashboards and the agent runtime.
type Gateway struct {
	catalog  catalog.Source
	executor tools.ToolExecutor
	sessions Sessions
	metrics  http.Handler
}

// NewGateway wires the HTTP handlers. A nil metrics handler serves the default registry.
func NewGateway(source catalog.Source, executor tools.ToolExecutor, sessions Sessions, metrics http.Handler) *Gateway {
	if metrics == nil {
		metrics = promhttp.Handler()
	}
	return &Gateway{catalog: source, executor: executor, sessions: sessions, metrics: metrics}
}

// SetupRouter configures the API routes on router.
func (g *Gateway) SetupRouter(router *gin.Engine) {
	router.GET("/health", g.HealthHandler)
	router.GET("/metrics", gin.WrapH(g.metrics))

	api := router.Group("/api")
	{
		scenarios := api.Group("/scenarios")
		{
			scenarios.GET("", g.ListScenariosHandler)
			scenarios.GET("/:id", g.GetScenarioHandler)
		}

		toolGroup := api.Group("/tools")
		{
			toolGroup.GET("", g.ListToolsHandler)
			toolGroup.POST("/:name", g.InvokeToolHandler)
		}

		sessions := api.Group("/sessions")
		{
			sessions.POST("", g.CreateSessionHandler)
			sessions.PUT("/:id/scenario", g.SelectScenarioHandler)
			sessions.POST("/:id/actions/:trigger", g.AdvanceHandler)
			sessions.GET("/:id/state", g.GetStateHandler)
			sessions.POST("/:id/reset", g.ResetSessionHandler)
			sessions.DELETE("/:id", g.CloseSessionHandler)
		}
	}
}

// NewRouter returns a gin engine with recovery and the gateway routes.
func (g *Gateway) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	g.SetupRouter(router)
	return router
}
