package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestRecorder receives per-request measurements.
type RequestRecorder interface {
	ObserveRequest(handler string, status int, latencyMS float64)
}

// Metrics records status and latency per matched route.
func Metrics(recorder RequestRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.ObserveRequest(route, c.Writer.Status(), float64(time.Since(start).Microseconds())/1000)
	}
}
