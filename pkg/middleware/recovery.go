package middleware

import (
	"fmt"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/pairchat/pkg/common"
	"github.com/richxcame/pairchat/pkg/logger"
	"go.uber.org/zap"
)

// Recovery turns panics into 500 responses and forwards them to Sentry when
// the sentrygin middleware installed a hub.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.WithContext(c.Request.Context()).Error("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)

				appErr := common.NewInternalServerError("internal server error", fmt.Errorf("panic: %v", err))
				if hub := sentrygin.GetHubFromContext(c); hub != nil {
					hub.CaptureException(appErr.Err)
				}

				common.AppErrorResponse(c, appErr)
				c.Abort()
			}
		}()

		c.Next()
	}
}
