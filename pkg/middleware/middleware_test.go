package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/richxcame/pairchat/pkg/jwtkeys"
	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/richxcame/pairchat/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func validClaims(role string) Claims {
	return Claims{
		UserID: "u-1",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddlewareWithProvider(jwtkeys.NewStaticProvider(testJWTSecret)))
	r.GET("/me", func(c *gin.Context) {
		role, err := GetUserRole(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"role": role})
	})
	return r
}

// ====================
// Auth
// ====================

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, validClaims("user1"), testJWTSecret))
	w := httptest.NewRecorder()

	authRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"user1"}`, w.Body.String())
}

func TestAuthMiddlewareSupportsQueryParamToken(t *testing.T) {
	token := signToken(t, validClaims("user2"), testJWTSecret)
	req := httptest.NewRequest(http.MethodGet, "/me?token="+token, nil)
	w := httptest.NewRecorder()

	authRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired := validClaims("user1")
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"whitespace only", "   "},
		{"bearer without token", "Bearer"},
		{"invalid token format", "Bearer invalid-token"},
		{"missing Bearer prefix", "some-token"},
		{"wrong prefix", "Basic some-token"},
		{"wrong secret", "Bearer " + signToken(t, validClaims("user1"), "other-secret")},
		{"expired", "Bearer " + signToken(t, expired, testJWTSecret)},
		{"missing role", "Bearer " + signToken(t, validClaims(""), testJWTSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			authRouter().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
		})
	}
}

func TestGetUserRole_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, err := GetUserRole(c)
	assert.Error(t, err)
}

// ====================
// Correlation ID
// ====================

func TestCorrelationID(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationID())
	var fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromCtx = logger.CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("propagates caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(CorrelationIDHeader, "req-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get(CorrelationIDHeader))
		assert.Equal(t, "req-123", fromCtx)
	})

	t.Run("generates id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		generated := w.Header().Get(CorrelationIDHeader)
		assert.Len(t, generated, 36)
		assert.Equal(t, generated, fromCtx)
	})
}

// ====================
// Recovery / headers
// ====================

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestSecurityHeaders(t *testing.T) {
	for _, hsts := range []bool{false, true} {
		r := gin.New()
		r.Use(SecurityHeaders(hsts))
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, hsts, w.Header().Get("Strict-Transport-Security") != "")
	}
}

// ====================
// Validation helpers
// ====================

type bindRequest struct {
	MessageID string `json:"messageId" validate:"required"`
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", `{"messageId":"m1"}`, ""},
		{"missing field", `{}`, "messageId"},
		{"malformed", `{"messageId":`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req bindRequest
			err := ValidateJSON(c, &req)

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var valErr *validation.ValidationError
			require.True(t, errors.As(err, &valErr))
			_, ok := valErr.GetFieldError(tt.wantField)
			assert.True(t, ok)
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodySize(16))
	r.POST("/", func(c *gin.Context) {
		var req bindRequest
		err := ValidateJSON(c, &req)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	body := bytes.NewBufferString(`{"messageId":"` + strings.Repeat("x", 64) + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
