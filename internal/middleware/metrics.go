package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dadolfin1208/signalforge/internal/metrics"
)

// Metrics records every request except the infrastructure endpoints.
// Requests are labelled with the matched route so project IDs never
// become label values.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
