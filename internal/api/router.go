// internal/api/router.go
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basobaas-search/internal/common/config"
	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/observability"
)

// NewRouter builds the gin engine with middleware, health and metrics
// endpoints, and the search API routes.
func NewRouter(cfg config.ServerConfig, app config.AppConfig, handler *Handler, log logger.Logger, obs *observability.Observability) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogging(log, obs))

	corsConfig := cors.DefaultConfig()
	if cfg.AllowedOrigins == "*" || cfg.AllowedOrigins == "" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.AllowedOrigins}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", requestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": app.Name,
			"version": app.Version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/search", handler.Search)
		apiGroup.GET("/recommendations", handler.Recommendations)
		apiGroup.GET("/properties/nearby", handler.Nearby)
		apiGroup.GET("/properties/:id/similar", handler.Similar)
	}

	return router
}
