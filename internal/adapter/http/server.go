// Package http serves the dashboard API alongside the health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/inventory"
	"github.com/couchcryptid/motostock-inventory-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// Scheduler is the part of the refresh scheduler the API drives.
type Scheduler interface {
	sharedobs.ReadinessChecker
	RefreshNow(trigger string)
	ApplySettings(settings domain.Settings) error
	State() pipeline.State
}

// InsightAnalyzer requests an analysis from the insight workflow.
type InsightAnalyzer interface {
	Analyze(ctx context.Context) (domain.Insight, error)
}

// Deps are the collaborators behind the API routes. Insights and Place are
// optional.
type Deps struct {
	Store             *inventory.Store
	Scheduler         Scheduler
	Insights          InsightAnalyzer
	Place             domain.PlaceFunc
	RestockWebhookURL string
	// AllowedOrigins enables CORS for browser dashboards served elsewhere.
	AllowedOrigins    []string
}

// Server exposes the dashboard API plus /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with every route registered.
func NewServer(addr string, deps Deps, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  deps.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	router.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(deps.Scheduler)))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api")
	{
		api.GET("/dashboard", h.dashboard)
		api.GET("/inventory", h.inventory)
		api.GET("/inventory/:id/transfer-candidates", h.transferCandidates)
		api.GET("/map", h.cityMap)
		api.POST("/restock", h.restock)
		api.POST("/transfer", h.transfer)
		api.GET("/notifications", h.notifications)
		api.POST("/notifications/:id/read", h.markRead)
		api.DELETE("/notifications/:id", h.clearNotification)
		api.GET("/settings", h.getSettings)
		api.PUT("/settings", h.putSettings)
		api.POST("/refresh", h.refresh)
		api.POST("/insights", h.insights)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second, // insight analysis is slow
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// requestLogger emits one structured line per request, at Warn for client
// errors and Error for server errors.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
		}
		switch {
		case status >= 500:
			logger.Error("http request", attrs...)
		case status >= 400:
			logger.Warn("http request", attrs...)
		default:
			logger.Debug("http request", attrs...)
		}
	}
}
