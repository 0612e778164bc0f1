package common

import (
	"github.com/gin-gonic/gin"
)

// Response is the envelope for errors raised outside a domain handler
// (unknown routes, recovered panics).
type Response struct {
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes an error in a response
type ErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse sends an error response
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    status,
			Message: message,
		},
	})
}

// AppErrorResponse sends an error response from an AppError
func AppErrorResponse(c *gin.Context, err *AppError) {
	ErrorResponse(c, err.Code, err.Message)
}
