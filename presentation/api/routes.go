package api

import (
	"time"

	"seleniumacros/application/iim"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// SetupRoutes - builds the host API over one facade; calls are serialized by the facade
func SetupRoutes(facade *iim.Interface, gatherer prometheus.Gatherer, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	h := &handlers{iim: facade, logger: logger}

	router.GET("/health", h.health)
	router.POST("/init", h.init)
	router.POST("/play", h.play)
	router.POST("/variables", h.setVariables)
	router.POST("/display", h.display)
	router.POST("/exit", h.exit)
	router.GET("/errors/last", h.lastError)
	router.GET("/extracts/last", h.lastExtract)
	router.GET("/reports/last", h.lastReport)

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("Handled request")
	}
}
