package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/translations", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{
			"messageId":      "m1",
			"targetLanguage": "zh-CN",
			"sourceLanguage": "auto",
		}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"translation":{"messageId":"m1","sourceLanguage":"en","targetLanguage":"zh-CN","translatedText":"你好世界","originalText":"Hello world","cached":true}}`))
	}))
	defer server.Close()

	tr, err := NewClient(server.URL, "token-1").Translate(context.Background(), "m1", "zh-CN", "auto")

	require.NoError(t, err)
	assert.Equal(t, "你好世界", tr.TranslatedText)
	assert.True(t, tr.Cached)
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "zh-TW", r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"翻譯請求過多，請稍後再試","code":"RATE_LIMIT"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "", WithLanguage("zh-TW")).Translate(context.Background(), "m1", "en", "")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "RATE_LIMIT", apiErr.Code)
	assert.Equal(t, "翻譯請求過多，請稍後再試", apiErr.Message)
}

func TestClient_APIErrorWithoutJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "").Translate(context.Background(), "m1", "en", "")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.NotEmpty(t, apiErr.Message)
}

func TestClient_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url, "", WithTimeout(time.Second)).Translate(context.Background(), "m1", "en", "")

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestClient_History(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/translations/m1", r.URL.Path)
		assert.Equal(t, "zh-TW", r.URL.Query().Get("targetLanguage"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translations":[{"id":"t1","messageId":"m1","sourceLanguage":"en","targetLanguage":"zh-TW","translatedText":"你好","createdAt":"2026-01-02T03:04:05Z"}]}`))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, "").History(context.Background(), "m1", "zh-TW")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "你好", records[0].TranslatedText)
	assert.Equal(t, 2026, records[0].CreatedAt.Year())
}

func TestClient_Preferences(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/translations/preferences":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, false, body["showOriginal"])
			_, _ = w.Write([]byte(`{"success":true,"preference":{"messageId":"m1","showOriginal":false,"targetLanguage":"en"}}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/translations/preferences/m1":
			_, _ = w.Write([]byte(`{"success":true,"preference":{"messageId":"m1","showOriginal":true,"targetLanguage":null}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	saved, err := c.SetPreference(context.Background(), "m1", false, "en")
	require.NoError(t, err)
	assert.False(t, saved.ShowOriginal)
	require.NotNil(t, saved.TargetLanguage)
	assert.Equal(t, "en", *saved.TargetLanguage)

	pref, err := c.GetPreference(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, pref.ShowOriginal)
	assert.Nil(t, pref.TargetLanguage)
}
