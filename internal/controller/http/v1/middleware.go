package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"audio_conversion/internal/telemetry/metric"
	"audio_conversion/pkg/logger"
)

func requestLogger(l logger.Interface, m *metric.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()

		m.ObserveHTTP(route, c.Request.Method, status, latency)

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if route == "/healthz" || route == "/metrics" {
			l.WithFields(fields).Debug("http request")
			return
		}
		l.WithFields(fields).Info("http request")
	}
}
