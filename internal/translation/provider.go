package translation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/richxcame/pairchat/pkg/config"
	"github.com/richxcame/pairchat/pkg/httpclient"
	"github.com/richxcame/pairchat/pkg/logger"
	"github.com/richxcame/pairchat/pkg/middleware"
	"github.com/richxcame/pairchat/pkg/resilience"
	"github.com/richxcame/pairchat/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// myMemoryResponse is the subset of the MyMemory reply we rely on
type myMemoryResponse struct {
	ResponseData *struct {
		TranslatedText *string `json:"translatedText"`
	} `json:"responseData"`
	QuotaFinished *bool `json:"quotaFinished"`
}

// MyMemoryProvider calls a MyMemory-compatible translation API
type MyMemoryProvider struct {
	client       *httpclient.Client
	contactEmail string
	timeout      time.Duration
	breaker      *resilience.CircuitBreaker
}

// NewMyMemoryProvider creates a provider from config. The breaker is
// optional and only counts transport failures and 5xx replies.
func NewMyMemoryProvider(cfg config.TranslationConfig) *MyMemoryProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTranslationTimeout
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultTranslationURL
	}

	p := &MyMemoryProvider{
		// the per-call context carries the deadline; the client timeout is a backstop
		client:       httpclient.NewClient(strings.TrimRight(baseURL, "/"), timeout+time.Second),
		contactEmail: cfg.ContactEmail,
		timeout:      timeout,
	}

	if cfg.BreakerEnabled {
		p.breaker = resilience.NewCircuitBreaker(resilience.Settings{
			Name:             "translation-provider",
			Interval:         cfg.BreakerInterval,
			Timeout:          cfg.BreakerTimeout,
			FailureThreshold: uint32(max(cfg.BreakerFailureThreshold, 0)),
			SuccessThreshold: uint32(max(cfg.BreakerSuccessThreshold, 0)),
			IsFailure:        isBreakerFailure,
		})
	}

	return p
}

// Translate sends text to the MT API and maps every failure to *Error.
func (p *MyMemoryProvider) Translate(ctx context.Context, text string, source, target LanguageCode) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", p.fail(NewError(KindInvalidInput, "text must not be empty", nil))
	}
	if !source.IsValid() || !target.IsValid() {
		return "", p.fail(NewError(KindInvalidInput,
			fmt.Sprintf("unsupported language pair %s|%s", source, target), nil))
	}

	ctx, span := tracing.Tracer("translation").Start(ctx, "translation.provider")
	defer span.End()
	span.SetAttributes(
		attribute.String("translation.source", string(source)),
		attribute.String("translation.target", string(target)),
		attribute.Int("translation.text_length", len(text)),
	)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	translated, err := p.call(ctx, text, source, target)
	if err != nil {
		providerDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", p.fail(err)
	}
	providerDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())
	return translated, nil
}

func (p *MyMemoryProvider) call(ctx context.Context, text string, source, target LanguageCode) (string, *Error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", string(source)+"|"+string(target))
	if p.contactEmail != "" {
		params.Set("de", p.contactEmail)
	}
	path := "/get?" + params.Encode()

	var headers map[string]string
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		headers = map[string]string{middleware.CorrelationIDHeader: id}
	}

	op := func(ctx context.Context) (interface{}, error) {
		return p.client.Get(ctx, path, headers)
	}

	var (
		result interface{}
		err    error
	)
	if p.breaker != nil {
		result, err = p.breaker.Execute(ctx, op)
	} else {
		result, err = op(ctx)
	}
	if err != nil {
		return "", p.classify(ctx, err)
	}

	return parseResponse(result.([]byte))
}

func (p *MyMemoryProvider) classify(ctx context.Context, err error) *Error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return NewError(KindServiceUnavailable, "translation service is temporarily unavailable", err)
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == http.StatusForbidden || httpErr.StatusCode == http.StatusTooManyRequests:
			return NewError(KindRateLimit, "translation rate limit exceeded, please try again later", err)
		case httpErr.StatusCode == http.StatusBadRequest:
			return NewError(KindInvalidInput, "translation service rejected the request", err)
		default:
			return NewError(KindServiceUnavailable,
				fmt.Sprintf("translation service returned status %d", httpErr.StatusCode), err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewError(KindNetworkError, fmt.Sprintf("translation request timed out after %s", p.timeout), err)
	}
	return NewError(KindNetworkError, "could not reach translation service", err)
}

func parseResponse(body []byte) (string, *Error) {
	var resp myMemoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewError(KindInvalidResponse, "translation service returned malformed JSON", err)
	}
	if resp.QuotaFinished != nil && *resp.QuotaFinished {
		return "", NewError(KindRateLimit, "translation quota exhausted, please try again later", nil)
	}
	if resp.ResponseData == nil || resp.ResponseData.TranslatedText == nil {
		return "", NewError(KindInvalidResponse, "translation service response is missing translated text", nil)
	}
	translated := strings.TrimSpace(*resp.ResponseData.TranslatedText)
	if translated == "" {
		return "", NewError(KindInvalidResponse, "translation service returned empty text", nil)
	}
	return translated, nil
}

func (p *MyMemoryProvider) fail(err *Error) *Error {
	providerErrorsTotal.WithLabelValues(string(err.Kind)).Inc()
	logger.Warn("translation provider failed",
		zap.String("kind", string(err.Kind)),
		zap.Int("status", err.HTTPStatus),
		zap.Error(err),
	)
	return err
}

// isBreakerFailure counts only outages against the breaker. Quota and
// request errors are the caller's problem, not the provider's health.
func isBreakerFailure(err error) bool {
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return !errors.Is(err, context.Canceled)
}
