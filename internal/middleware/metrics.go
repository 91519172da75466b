package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foyerhq/foyer-api/internal/service"
)

// Metrics records latency and status for every request. The route template
// (FullPath) is used as the label so /tasks/:id stays one series; unmatched
// paths fall back to the raw URL.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
