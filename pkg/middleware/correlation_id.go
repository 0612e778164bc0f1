package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/pairchat/pkg/logger"
)

// CorrelationIDHeader is the header name for correlation ID
const CorrelationIDHeader = "X-Request-ID"

// CorrelationID reuses the caller's X-Request-ID or generates one, echoes it
// back and attaches it to the request context so logger.WithContext and
// downstream calls carry it.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		c.Request = c.Request.WithContext(logger.ContextWithCorrelationID(c.Request.Context(), correlationID))
		c.Writer.Header().Set(CorrelationIDHeader, correlationID)

		c.Next()
	}
}
