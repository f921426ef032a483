package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// LogWithWriter writes one access line per request.
func LogWithWriter() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		ctx := c.Request.Context()
		switch {
		case status >= 500:
			Errorf(ctx, "%s %s %d %s %s %s", c.Request.Method, path, status, latency, c.ClientIP(), c.Errors.String())
		case status >= 400:
			Warnf(ctx, "%s %s %d %s %s", c.Request.Method, path, status, latency, c.ClientIP())
		default:
			Infof(ctx, "%s %s %d %s %s", c.Request.Method, path, status, latency, c.ClientIP())
		}
	}
}
