// internal/api/middleware.go
package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"basobaas-search/internal/common/logger"
	"basobaas-search/internal/common/metrics"
	"basobaas-search/internal/common/observability"
)

const requestIDHeader = "X-Request-ID"

// RequestID assigns every request an identifier, reusing the caller's
// when one is supplied.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogging emits one structured line per request and feeds the
// per-endpoint counters and latency histogram. obs may be nil in tests.
func RequestLogging(log logger.Logger, obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		elapsed := time.Since(start)
		metrics.SearchRequestsTotal.WithLabelValues(path).Inc()
		metrics.SearchDuration.WithLabelValues(path).Observe(elapsed.Seconds())
		if obs != nil {
			obs.RecordRequest(c.Request.Context(), path, strconv.Itoa(c.Writer.Status()))
			obs.RecordDuration(c.Request.Context(), path, elapsed)
		}

		log.Info("request handled", map[string]interface{}{
			"requestId": c.GetString("requestID"),
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"elapsedMs": elapsed.Milliseconds(),
		})
	}
}
