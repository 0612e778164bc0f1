package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/pairchat/pkg/validation"
)

// ValidateJSON binds the JSON body into req and validates it. A malformed
// body is reported as a *validation.ValidationError on the "body" field so
// callers can treat both failures alike.
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		valErr := &validation.ValidationError{}
		valErr.AddError("body", "request body must be valid JSON")
		return valErr
	}
	return validation.ValidateStruct(req)
}

// ValidateQuery binds query parameters into req and validates it.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		valErr := &validation.ValidationError{}
		valErr.AddError("query", err.Error())
		return valErr
	}
	return validation.ValidateStruct(req)
}

// MaxBodySize limits the request body size. Reads beyond maxSize fail with
// *http.MaxBytesError, which ValidateJSON passes through unchanged.
func MaxBodySize(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
