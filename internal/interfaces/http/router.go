// Package http assembles the gin route tree and HTTP server for the
// REST API.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/RegGap-Intelligence/internal/interfaces/http/handlers"
	"github.com/turtacn/RegGap-Intelligence/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for
// the route tree. Nil handlers leave their routes unregistered; nil
// middleware dependencies disable the corresponding middleware.
type RouterConfig struct {
	AnalysisHandler *handlers.AnalysisHandler
	ReportHandler   *handlers.ReportHandler
	GlossaryHandler *handlers.GlossaryHandler
	HealthHandler   *handlers.HealthHandler

	Logger        logging.Logger
	LoggingConfig *middleware.LoggingConfig
	CORSConfig    *middleware.CORSConfig
	RateLimiter   middleware.RateLimiter

	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector

	Mode string // gin mode: "debug" | "release" | "test"
}

// NewRouter builds the complete route tree: global middleware, public
// health probes, the metrics endpoint, and the /api/v1 resources.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()

	r.Use(middleware.RequestID())
	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.LoggingConfig != nil {
			logCfg = *cfg.LoggingConfig
		}
		r.Use(middleware.RequestLogging(cfg.Logger, logCfg))
		r.Use(middleware.Recovery(cfg.Logger))
	} else {
		r.Use(gin.Recovery())
	}
	if cfg.CORSConfig != nil {
		r.Use(middleware.CORS(*cfg.CORSConfig))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(httpMetrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}

	api := r.Group("/api/v1")
	registerAnalysisRoutes(api, cfg.AnalysisHandler)
	registerReportRoutes(api, cfg.ReportHandler)
	registerGlossaryRoutes(api, cfg.GlossaryHandler)

	return r
}

func registerAnalysisRoutes(api *gin.RouterGroup, h *handlers.AnalysisHandler) {
	if h == nil {
		return
	}
	api.POST("/analyses", h.Analyze)
	api.GET("/analyses", h.List)
	api.GET("/analyses/:documentID", h.Get)
	api.DELETE("/analyses/:documentID", h.Delete)
	api.POST("/comparisons", h.Compare)
}

func registerReportRoutes(api *gin.RouterGroup, h *handlers.ReportHandler) {
	if h == nil {
		return
	}
	api.POST("/reports", h.Generate)
	api.GET("/reports", h.List)
	api.GET("/reports/:reportID", h.Get)
	api.GET("/reports/:reportID/download", h.Download)
	api.DELETE("/reports/:reportID", h.Delete)
}

func registerGlossaryRoutes(api *gin.RouterGroup, h *handlers.GlossaryHandler) {
	if h == nil {
		return
	}
	api.GET("/glossary/terms/:term", h.GetTerm)
	api.GET("/glossary/terms/:term/references", h.GetReferences)
	api.GET("/glossary/conflicts", h.GetConflictCandidates)
}

// httpMetrics records request counts and latency per route template.
func httpMetrics(metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" || path == "/healthz" || path == "/readyz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		prometheus.RecordHTTPRequest(metrics, c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
