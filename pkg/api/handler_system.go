package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eroom-dev/eroom/pkg/version"
)

// rootHandler handles GET /, the unauthenticated liveness probe.
func (s *Server) rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{
		Status:  "online",
		Message: "eroom server " + version.Full(),
	})
}

// healthHandler handles GET /health. The queue snapshot is the only
// component with health to report; the external providers are deliberately
// excluded so a provider outage cannot get this process restarted.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
		Queue:  s.manager.Stats(),
	})
}

// queueStatusHandler handles GET /queue/status.
func (s *Server) queueStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.manager.Stats())
}

// metricsHandler serves the Prometheus text exposition.
func (s *Server) metricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
