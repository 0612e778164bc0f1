package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pairchat/pkg/i18n"
	"github.com/richxcame/pairchat/pkg/logger"
	"go.uber.org/zap"
)

// IdentityFunc extracts the rate limit identity from a request.
// An empty identity skips limiting.
type IdentityFunc func(c *gin.Context) string

// Middleware limits requests to endpoint per identity. Redis failures fail
// open so a cache outage never blocks translation.
func Middleware(limiter *Limiter, endpoint string, identity IdentityFunc) gin.HandlerFunc {
	rule := limiter.DefaultRule()

	return func(c *gin.Context) {
		id := identity(c)
		if id == "" {
			c.Next()
			return
		}

		result, err := limiter.Allow(c.Request.Context(), endpoint, id, rule)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("rate limiter unavailable, allowing request",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			lang := i18n.MatchAcceptLanguage(c.GetHeader("Accept-Language"))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": i18n.ErrorMessage("RATE_LIMIT", lang, ""),
				"code":  "RATE_LIMIT",
			})
			return
		}

		c.Next()
	}
}
