package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pairchat/pkg/logger"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. Health and metrics scrapes are
// logged at debug level.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if role, ok := c.Get(UserRoleKey); ok {
			fields = append(fields, zap.Any("user_role", role))
		}

		reqLogger := logger.WithContext(c.Request.Context())

		switch {
		case len(c.Errors) > 0:
			reqLogger.Error("Request completed with errors", append(fields, zap.String("errors", c.Errors.String()))...)
		case path == "/healthz" || path == "/metrics":
			reqLogger.Debug("Request completed", fields...)
		default:
			reqLogger.Info("Request completed", fields...)
		}
	}
}
