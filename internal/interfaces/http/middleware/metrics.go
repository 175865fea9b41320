package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plant/backend/internal/infrastructure/telemetry"
)

// Metrics records request count and latency per route. Uses the route
// template (c.FullPath) rather than the raw URL to keep label cardinality
// bounded.
func Metrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
