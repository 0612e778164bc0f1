package translation

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies provider failures.
type ErrorKind string

const (
	KindInvalidInput       ErrorKind = "INVALID_INPUT"
	KindRateLimit          ErrorKind = "RATE_LIMIT"
	KindServiceUnavailable ErrorKind = "SERVICE_UNAVAILABLE"
	KindNetworkError       ErrorKind = "NETWORK_ERROR"
	KindInvalidResponse    ErrorKind = "INVALID_RESPONSE"
)

// HTTPStatus is the response status a kind is surfaced with.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindServiceUnavailable, KindNetworkError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed translation provider failure.
type Error struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Err        error
}

// NewError creates an Error whose status follows from kind.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, HTTPStatus: kind.HTTPStatus(), Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CacheErrorKind classifies translation cache failures.
type CacheErrorKind string

const (
	CacheDuplicate    CacheErrorKind = "DUPLICATE_TRANSLATION"
	CacheDatabase     CacheErrorKind = "DATABASE_ERROR"
	CacheInvalidInput CacheErrorKind = "INVALID_INPUT"
)

// CacheError is returned by the repository. The service never surfaces it.
type CacheError struct {
	Kind    CacheErrorKind
	Message string
	Err     error
}

func (e *CacheError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

// IsDuplicate reports whether err is a duplicate cache insert.
func IsDuplicate(err error) bool {
	var cacheErr *CacheError
	return errors.As(err, &cacheErr) && cacheErr.Kind == CacheDuplicate
}

// Request-level error codes returned by the HTTP API.
const (
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeMessageNotFound   = "MESSAGE_NOT_FOUND"
	CodeTranslationFailed = "TRANSLATION_FAILED"
)

// RequestError is a service failure that is not a provider error:
// validation, missing message, or an unexpected fault.
type RequestError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func newInvalidRequest(message string, details map[string]string) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: message, Details: details}
}

func newMessageNotFound(err error) *RequestError {
	return &RequestError{Status: http.StatusNotFound, Code: CodeMessageNotFound, Message: "message not found", Err: err}
}

func newTranslationFailed(err error) *RequestError {
	return &RequestError{Status: http.StatusInternalServerError, Code: CodeTranslationFailed, Message: "translation failed", Err: err}
}
