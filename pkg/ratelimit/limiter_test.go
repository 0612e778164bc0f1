package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/richxcame/pairchat/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helper: default config
// ---------------------------------------------------------------------------

func testConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:       true,
		WindowSeconds: 60,
		Limit:         3,
		RedisPrefix:   "rl",
	}
}

// ---------------------------------------------------------------------------
// NewLimiter
// ---------------------------------------------------------------------------

func TestNewLimiter(t *testing.T) {
	client, _ := redismock.NewClientMock()
	cfg := testConfig()

	limiter := NewLimiter(client, cfg)

	assert.NotNil(t, limiter.client)
	assert.NotNil(t, limiter.script)
	assert.NotEmpty(t, limiter.script.Hash())
	assert.Equal(t, Rule{Limit: 3, Window: time.Minute}, limiter.DefaultRule())
}

// ---------------------------------------------------------------------------
// Allow – bypass paths never touch Redis
// ---------------------------------------------------------------------------

func TestAllow_DisabledLimiter(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cfg := testConfig()
	cfg.Enabled = false
	limiter := NewLimiter(client, cfg)

	rule := Rule{Limit: 100, Window: time.Minute}
	result, err := limiter.Allow(context.Background(), "translations", "user1", rule)

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 100, result.Remaining)
	assert.Equal(t, "user1", result.IdentityKey)
	assert.Equal(t, "translations", result.EndpointKey)
	assert.Zero(t, result.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_NonPositiveLimitBypasses(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())

	for _, limit := range []int{0, -1} {
		result, err := limiter.Allow(context.Background(), "translations", "user1", Rule{Limit: limit, Window: time.Minute})
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Allow – Redis-backed decisions
// ---------------------------------------------------------------------------

func TestAllow_UnderLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())

	mock.ExpectEvalSha(limiter.script.Hash(), []string{"rl:translations:user1"}, int64(60000)).
		SetVal([]interface{}{int64(2), int64(45000)})

	result, err := limiter.Allow(context.Background(), "translations", "user1", limiter.DefaultRule())

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.Remaining)
	assert.Equal(t, 45*time.Second, result.ResetAfter)
	assert.Zero(t, result.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_OverLimit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())

	mock.ExpectEvalSha(limiter.script.Hash(), []string{"rl:translations:user2"}, int64(60000)).
		SetVal([]interface{}{int64(4), int64(12000)})

	result, err := limiter.Allow(context.Background(), "translations", "user2", limiter.DefaultRule())

	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, 12*time.Second, result.RetryAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_ZeroWindowFallsBackToConfig(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cfg := testConfig()
	cfg.WindowSeconds = 30
	limiter := NewLimiter(client, cfg)

	mock.ExpectEvalSha(limiter.script.Hash(), []string{"rl:translations:user1"}, int64(30000)).
		SetVal([]interface{}{int64(1), int64(30000)})

	result, err := limiter.Allow(context.Background(), "translations", "user1", Rule{Limit: 5})

	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 30*time.Second, result.Window)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAllow_RedisError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())

	mock.ExpectEvalSha(limiter.script.Hash(), []string{"rl:translations:user1"}, int64(60000)).
		SetErr(errors.New("connection refused"))

	result, err := limiter.Allow(context.Background(), "translations", "user1", limiter.DefaultRule())

	assert.Error(t, err)
	assert.Nil(t, result)
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func newRouter(limiter *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/translations", Middleware(limiter, "translations", func(c *gin.Context) string {
		return c.GetHeader("X-User")
	}), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return r
}

func TestMiddleware_Rejects(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())
	mock.ExpectEvalSha(limiter.script.Hash(), []string{"rl:translations:user1"}, int64(60000)).
		SetVal([]interface{}{int64(4), int64(1500)})

	req := httptest.NewRequest(http.MethodPost, "/translations", nil)
	req.Header.Set("X-User", "user1")
	req.Header.Set("Accept-Language", "zh-TW")
	w := httptest.NewRecorder()
	newRouter(limiter).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Contains(t, w.Body.String(), `"code":"RATE_LIMIT"`)
	assert.Contains(t, w.Body.String(), "翻譯請求過多")
}

func TestMiddleware_FailsOpen(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())
	mock.ExpectEvalSha(limiter.script.Hash(), []string{"rl:translations:user1"}, int64(60000)).
		SetErr(errors.New("connection refused"))

	req := httptest.NewRequest(http.MethodPost, "/translations", nil)
	req.Header.Set("X-User", "user1")
	w := httptest.NewRecorder()
	newRouter(limiter).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_NoIdentitySkips(t *testing.T) {
	client, mock := redismock.NewClientMock()
	limiter := NewLimiter(client, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/translations", nil)
	w := httptest.NewRecorder()
	newRouter(limiter).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestToInt(t *testing.T) {
	tests := []struct {
		name   string
		input  interface{}
		expect int
	}{
		{"int64", int64(42), 42},
		{"int", int(99), 99},
		{"string valid", "123", 123},
		{"string invalid", "abc", 0},
		{"float64", float64(7.9), 7},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, toInt(tt.input))
		})
	}
}

func TestConfigWindow(t *testing.T) {
	assert.Equal(t, 60*time.Second, config.RateLimitConfig{WindowSeconds: 60}.Window())
	assert.Equal(t, time.Minute, config.RateLimitConfig{WindowSeconds: 0}.Window())
	assert.Equal(t, time.Minute, config.RateLimitConfig{WindowSeconds: -1}.Window())
}
