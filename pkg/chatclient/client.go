package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultTimeout = 15 * time.Second

// Translation is a translated message as returned by POST /translations
type Translation struct {
	MessageID      string `json:"messageId"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	TranslatedText string `json:"translatedText"`
	OriginalText   string `json:"originalText"`
	Cached         bool   `json:"cached"`
}

// TranslationRecord is a cached translation from the history endpoint
type TranslationRecord struct {
	ID             string    `json:"id"`
	MessageID      string    `json:"messageId"`
	SourceLanguage string    `json:"sourceLanguage"`
	TargetLanguage string    `json:"targetLanguage"`
	TranslatedText string    `json:"translatedText"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Preference is a per-user display preference for a message
type Preference struct {
	MessageID      string  `json:"messageId"`
	ShowOriginal   bool    `json:"showOriginal"`
	TargetLanguage *string `json:"targetLanguage"`
}

// APIError is a non-2xx response from the translation API
type APIError struct {
	StatusCode int               `json:"-"`
	Code       string            `json:"code"`
	Message    string            `json:"error"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError means the request never produced a response
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Client talks to the translation HTTP API
type Client struct {
	http *resty.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout overrides the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithLanguage asks the server for error messages in lang
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.http.SetHeader("Accept-Language", lang)
		}
	}
}

// WithTransport swaps the underlying round tripper, mainly for tests
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
	}
}

// NewClient creates an API client. token is sent as a Bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	h := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Accept", "application/json")
	if token != "" {
		h.SetAuthToken(token)
	}

	c := &Client{http: h}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate requests a translation of a message. source may be "auto" or empty.
func (c *Client) Translate(ctx context.Context, messageID, targetLanguage, sourceLanguage string) (*Translation, error) {
	body := map[string]string{
		"messageId":      messageID,
		"targetLanguage": targetLanguage,
	}
	if sourceLanguage != "" {
		body["sourceLanguage"] = sourceLanguage
	}

	var out struct {
		Success     bool         `json:"success"`
		Translation *Translation `json:"translation"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/api/v1/translations")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	if out.Translation == nil {
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: "response is missing translation"}
	}
	return out.Translation, nil
}

// History lists cached translations of a message, newest first
func (c *Client) History(ctx context.Context, messageID, targetLanguage string) ([]TranslationRecord, error) {
	req := c.http.R().SetContext(ctx).SetPathParam("messageId", messageID)
	if targetLanguage != "" {
		req.SetQueryParam("targetLanguage", targetLanguage)
	}

	var out struct {
		Translations []TranslationRecord `json:"translations"`
	}
	resp, err := req.SetResult(&out).Get("/api/v1/translations/{messageId}")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Translations, nil
}

// GetPreference returns the caller's display preference for a message
func (c *Client) GetPreference(ctx context.Context, messageID string) (*Preference, error) {
	var out struct {
		Preference *Preference `json:"preference"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("messageId", messageID).
		SetResult(&out).
		Get("/api/v1/translations/preferences/{messageId}")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Preference, nil
}

// SetPreference stores the caller's display preference for a message
func (c *Client) SetPreference(ctx context.Context, messageID string, showOriginal bool, targetLanguage string) (*Preference, error) {
	body := map[string]interface{}{
		"messageId":    messageID,
		"showOriginal": showOriginal,
	}
	if targetLanguage != "" {
		body["targetLanguage"] = targetLanguage
	}

	var out struct {
		Preference *Preference `json:"preference"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/api/v1/translations/preferences")
	if err := checkResponse(resp, err); err != nil {
		return nil, err
	}
	return out.Preference, nil
}

// checkResponse separates "no response" from "bad response". resty returns
// a response with no status when the transport failed.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		if resp != nil && resp.StatusCode() != 0 {
			return &APIError{StatusCode: resp.StatusCode(), Message: fmt.Sprintf("invalid response: %v", err)}
		}
		return &NetworkError{Err: err}
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		apiErr := &APIError{}
		if jsonErr := json.Unmarshal(resp.Body(), apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(resp.Status())
		}
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	return nil
}
