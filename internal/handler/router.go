package handler

import (
	"net/http"

	"github.com/parthasarathygopu/orca/internal/service"
	"github.com/parthasarathygopu/orca/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Suites       service.SuiteService
	Cases        service.CaseService
	ActionGroups service.ActionGroupService
	History      service.HistoryService
	Runs         service.RunService
}

// NewRouter registers every route. hub and gatherer may be nil.
func NewRouter(svc Services, hub *websocket.Hub, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), corsMiddleware())

	NewSuiteHandler(svc.Suites, svc.Runs).RegisterRoutes(r)
	NewCaseHandler(svc.Cases, svc.Runs).RegisterRoutes(r)
	NewActionGroupHandler(svc.ActionGroups).RegisterRoutes(r)
	NewHistoryHandler(svc.History).RegisterRoutes(r)
	if hub != nil {
		NewWebSocketHandler(hub).RegisterRoutes(r)
	}
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "orca",
		})
	})
	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
