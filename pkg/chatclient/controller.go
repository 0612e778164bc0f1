package chatclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/richxcame/pairchat/pkg/i18n"
)

// MaxRetries is how many Retry calls a controller allows before giving up
const MaxRetries = 3

// State is the lifecycle of one translation widget
type State string

const (
	StateIdle    State = "IDLE"
	StateLoading State = "LOADING"
	StateSuccess State = "SUCCESS"
	StateError   State = "ERROR"
)

// ErrorCode classifies a failed translation for display
type ErrorCode string

const (
	CodeRateLimit          ErrorCode = "RATE_LIMIT"
	CodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
	CodeNetworkError       ErrorCode = "NETWORK_ERROR"
	CodeTranslationFailed  ErrorCode = "TRANSLATION_FAILED"
	CodeMaxRetries         ErrorCode = "MAX_RETRIES"
)

var (
	// ErrBusy is returned when a call overlaps one already in flight
	ErrBusy = errors.New("translation already in progress")
	// ErrMissingArgument is returned when the message id or target is empty
	ErrMissingArgument = errors.New("message id and target language are required")
)

// ControllerError is the user-facing failure kept in the controller state
type ControllerError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Err        error
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ControllerError) Unwrap() error {
	return e.Err
}

// Translator is the API call the controller drives
type Translator interface {
	Translate(ctx context.Context, messageID, targetLanguage, sourceLanguage string) (*Translation, error)
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Snapshot is a read-only copy of the controller state
type Snapshot struct {
	State       State
	Loading     bool
	Err         *ControllerError
	Translation *Translation
	RetryCount  int
}

// maxBackoffExponent keeps 1<<attempt seconds inside time.Duration
const maxBackoffExponent = 30

// BackoffDelay is the wait before retry number attempt (0-based): 1s, 2s, 4s.
func BackoffDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffExponent {
		attempt = maxBackoffExponent
	}
	return time.Duration(1<<uint(attempt)) * time.Second
}

// RetryController owns the translation state of one message widget.
// Overlapping calls are rejected with ErrBusy rather than queued.
type RetryController struct {
	mu          sync.Mutex
	client      Translator
	messageID   string
	lang        string
	sleep       Sleeper
	state       State
	err         *ControllerError
	translation *Translation
	retryCount  int
}

// ControllerOption configures a RetryController
type ControllerOption func(*RetryController)

// WithSleeper replaces the backoff timer, mainly for tests
func WithSleeper(s Sleeper) ControllerOption {
	return func(c *RetryController) {
		c.sleep = s
	}
}

// WithMessageLanguage localizes the error messages the controller produces
func WithMessageLanguage(lang string) ControllerOption {
	return func(c *RetryController) {
		c.lang = lang
	}
}

// NewRetryController creates a controller in the IDLE state
func NewRetryController(client Translator, messageID string, opts ...ControllerOption) *RetryController {
	c := &RetryController{
		client:    client,
		messageID: messageID,
		lang:      i18n.DefaultLang,
		sleep:     sleepContext,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate issues a translation request. sourceLanguage defaults to "auto".
func (c *RetryController) Translate(ctx context.Context, targetLanguage, sourceLanguage string) (*Translation, error) {
	if c.messageID == "" || targetLanguage == "" {
		return nil, ErrMissingArgument
	}

	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()

	return c.run(ctx, targetLanguage, sourceLanguage)
}

// Retry re-issues the request after BackoffDelay(retryCount). After
// MaxRetries attempts it fails with MAX_RETRIES without calling the API.
func (c *RetryController) Retry(ctx context.Context, targetLanguage, sourceLanguage string) (*Translation, error) {
	if c.messageID == "" || targetLanguage == "" {
		return nil, ErrMissingArgument
	}

	c.mu.Lock()
	if c.state == StateLoading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if c.retryCount >= MaxRetries {
		c.state = StateError
		c.err = &ControllerError{
			Code:    CodeMaxRetries,
			Message: c.message(CodeMaxRetries, "Translation is still failing, please try again later"),
		}
		err := c.err
		c.mu.Unlock()
		return nil, err
	}

	delay := BackoffDelay(c.retryCount)
	c.retryCount++
	previousErr := c.err
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()

	if err := c.sleep(ctx, delay); err != nil {
		c.mu.Lock()
		c.state = StateError
		c.err = previousErr
		c.mu.Unlock()
		return nil, err
	}

	return c.run(ctx, targetLanguage, sourceLanguage)
}

// Reset returns to IDLE and forgets the result, error and attempt count
func (c *RetryController) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateIdle
	c.err = nil
	c.translation = nil
	c.retryCount = 0
}

// Snapshot returns the current state
func (c *RetryController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:       c.state,
		Loading:     c.state == StateLoading,
		Err:         c.err,
		Translation: c.translation,
		RetryCount:  c.retryCount,
	}
}

func (c *RetryController) run(ctx context.Context, targetLanguage, sourceLanguage string) (*Translation, error) {
	if sourceLanguage == "" {
		sourceLanguage = "auto"
	}

	translation, err := c.client.Translate(ctx, c.messageID, targetLanguage, sourceLanguage)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateError
		c.err = c.classify(err)
		return nil, c.err
	}
	c.state = StateSuccess
	c.translation = translation
	c.retryCount = 0
	return translation, nil
}

func (c *RetryController) classify(err error) *ControllerError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		code := CodeTranslationFailed
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			code = CodeRateLimit
		case http.StatusServiceUnavailable:
			code = CodeServiceUnavailable
		case http.StatusNotFound:
			code = CodeNotFound
		case http.StatusBadRequest:
			code = CodeInvalidRequest
		}
		return &ControllerError{
			Code:       code,
			Message:    c.message(code, apiErr.Message),
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return &ControllerError{
			Code:    CodeNetworkError,
			Message: c.message(CodeNetworkError, "Could not reach the translation service, check your connection"),
			Err:     err,
		}
	}

	return &ControllerError{
		Code:    CodeTranslationFailed,
		Message: c.message(CodeTranslationFailed, "Translation failed"),
		Err:     err,
	}
}

func (c *RetryController) message(code ErrorCode, fallback string) string {
	return i18n.ErrorMessage(string(code), c.lang, fallback)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
