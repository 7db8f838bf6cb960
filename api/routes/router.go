package routes

import (
	"sort"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"osintscan/internal/handlers"
	"osintscan/internal/metrics"
	"osintscan/internal/services"
	"osintscan/pkg/logger"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	ScanService   services.ScanServiceMethods
	ConfigService services.ConfigServiceMethods
	Metrics       *metrics.PrometheusMetrics
	Logger        *logger.Logger
	CORSOrigins   []string
	Version       string
}

func InitRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Logger), deps.Metrics.GinMiddleware())

	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// REST APIs
	api := router.Group("/api")
	{
		InitScanRoutes(api, handlers.NewScanHandler(deps.ScanService, deps.Logger))
		if deps.ConfigService != nil {
			InitConfigRoutes(api, handlers.NewConfigHandler(deps.ConfigService, deps.Logger))
		}
	}

	router.GET("/health", handlers.Health(deps.Version, func() []string {
		return listEndpoints(router)
	}))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	return router
}

func listEndpoints(router *gin.Engine) []string {
	routes := router.Routes()
	endpoints := make([]string, 0, len(routes))
	for _, r := range routes {
		endpoints = append(endpoints, r.Method+" "+r.Path)
	}
	sort.Strings(endpoints)
	return endpoints
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(logger.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}).Debug("HTTP request")
	}
}
