package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/accel-dashboard-go/internal/observability"
)

// Logger middleware logs HTTP requests and counts them by matched route
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()
		method := c.Request.Method

		if raw != "" {
			path = path + "?" + raw
		}

		observability.RecordHTTP(method, c.FullPath(), statusCode)

		log.Printf("[%s] %s %s %d %v %s %s",
			method,
			path,
			c.ClientIP(),
			statusCode,
			latency,
			c.GetString(RequestIDKey),
			c.Errors.String(),
		)
	}
}
