package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned when the breaker rejects a call.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Settings configures a CircuitBreaker. Zero values fall back to a one
// minute counting interval, a 30 second open period, five consecutive
// failures to trip and one half-open success to close.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32

	// IsFailure decides which errors count against the breaker.
	// Every non-nil error counts when unset.
	IsFailure func(err error) bool
}

func (s Settings) withDefaults() Settings {
	if s.Name == "" {
		s.Name = "default"
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.SuccessThreshold == 0 {
		s.SuccessThreshold = 1
	}
	return s
}

// CircuitBreaker guards one upstream dependency. While open it fails fast
// with ErrCircuitOpen instead of calling the dependency.
type CircuitBreaker struct {
	name    string
	cb      *gobreaker.CircuitBreaker
	metrics breakerMetrics
}

// NewCircuitBreaker creates a closed breaker.
func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	settings = settings.withDefaults()
	metrics := newBreakerMetrics(settings.Name)

	gbSettings := gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.transition(to)
		},
	}
	if isFailure := settings.IsFailure; isFailure != nil {
		gbSettings.IsSuccessful = func(err error) bool {
			return err == nil || !isFailure(err)
		}
	}

	metrics.setState(gobreaker.StateClosed)

	return &CircuitBreaker{
		name:    settings.Name,
		cb:      gobreaker.NewCircuitBreaker(gbSettings),
		metrics: metrics,
	}
}

// State returns the current breaker state.
func (b *CircuitBreaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs op through the breaker. Rejections are logged and surface
// as ErrCircuitOpen; op errors are returned unchanged.
func (b *CircuitBreaker) Execute(ctx context.Context, op Operation) (interface{}, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return op(ctx)
	})
	switch {
	case err == nil:
		b.metrics.call("success")
		return result, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		b.metrics.call("rejected")
		logger.WithContext(ctx).Warn("circuit breaker open, failing fast",
			zap.String("breaker", b.name),
			zap.Error(err),
		)
		return nil, ErrCircuitOpen
	default:
		b.metrics.call("failure")
		return nil, err
	}
}
