package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/richxcame/pairchat/pkg/i18n"
	"github.com/richxcame/pairchat/pkg/jwtkeys"
)

const (
	// UserIDKey is the gin context key for the authenticated user id
	UserIDKey = "user_id"
	// UserRoleKey is the gin context key for the chat participant role
	UserRoleKey = "user_role"
)

// Claims are the JWT claims issued by the auth service.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddlewareWithProvider verifies a Bearer token (or ?token= for
// clients that cannot set headers) and stores user_id and user_role.
func AuthMiddlewareWithProvider(provider jwtkeys.KeyProvider) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			abortUnauthorized(c)
			return
		}

		claims := &Claims{}
		_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			kid, _ := token.Header["kid"].(string)
			return provider.ResolveKey(kid)
		})
		if err != nil || claims.Role == "" {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserRoleKey, claims.Role)
		c.Next()
	}
}

// GetUserRole returns the authenticated role set by the auth middleware.
func GetUserRole(c *gin.Context) (string, error) {
	role, ok := c.Get(UserRoleKey)
	if !ok {
		return "", errors.New("user role not found in context")
	}
	s, ok := role.(string)
	if !ok || s == "" {
		return "", errors.New("invalid user role in context")
	}
	return s, nil
}

func extractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return c.Query("token")
}

func abortUnauthorized(c *gin.Context) {
	lang := i18n.MatchAcceptLanguage(c.GetHeader("Accept-Language"))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": i18n.ErrorMessage("UNAUTHORIZED", lang, ""),
		"code":  "UNAUTHORIZED",
	})
}
