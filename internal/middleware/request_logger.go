// Package middleware holds gin middleware shared across route groups.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ervall/mediavault/internal/logger"
)

// RequestLogger logs each request with timing. Health probes are skipped to
// keep the log readable under liveness polling.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/ready" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.Info("HTTP request", []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.String("duration", time.Since(start).String()),
			logger.String("ip", c.ClientIP()),
		})
	}
}

// ErrorLogger logs handler errors collected on the gin context.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			logger.Error("Request error", []logger.Field{
				logger.String("method", c.Request.Method),
				logger.String("path", c.Request.URL.Path),
				logger.Err(err.Err),
			})
		}
	}
}
