package router

import (
	"picstorm-server/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerPublicRoutes(api *gin.RouterGroup) {
	api.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	cfg := config.Get().Metrics
	if !cfg.Enabled {
		return
	}
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	r.GET(path, gin.WrapH(promhttp.Handler()))
}
