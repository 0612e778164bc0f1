package common

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheckTimeout bounds every dependency probe
const healthCheckTimeout = 2 * time.Second

// CheckFunc probes a single dependency
type CheckFunc func(ctx context.Context) error

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheckWithDeps returns a health check handler with dependency checks.
// Any failing dependency turns the response into a 503.
func HealthCheckWithDeps(serviceName, version string, checks map[string]CheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		var checkResults map[string]string
		if len(checks) > 0 {
			checkResults = make(map[string]string, len(checks))
		}

		for name, check := range checks {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			err := check(ctx)
			cancel()

			if err != nil {
				checkResults[name] = "unhealthy: " + err.Error()
				status = "unhealthy"
			} else {
				checkResults[name] = "healthy"
			}
		}

		statusCode := http.StatusOK
		if status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, HealthResponse{
			Status:    status,
			Service:   serviceName,
			Version:   version,
			Timestamp: time.Now().UTC(),
			Checks:    checkResults,
		})
	}
}
