package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicecanvas/voicecanvas/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{
			JWTSecret: "test-secret",
			TTL:       time.Hour,
		},
		Whisper: config.WhisperConfig{
			BaseURL: "http://localhost:8178",
			Timeout: time.Second,
		},
		Audio: config.AudioConfig{FFmpegBin: "ffmpeg"},
		Bria: config.BriaConfig{
			APIKey:       "test-key",
			BaseURL:      "http://localhost:9",
			ModelVersion: "2.2",
		},
		Images:  config.ImagesConfig{DefaultProvider: "bria"},
		Prompts: config.PromptsConfig{RewriteBackend: "bria"},
	}
}

func TestRouterHealthz(t *testing.T) {
	handler := NewRouter(nil, nil, testConfig()).Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "voicecanvas", body["service"])
}

func TestRouterEnhanceEndToEnd(t *testing.T) {
	handler := NewRouter(nil, nil, testConfig()).Setup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/enhance",
		strings.NewReader(`{"text": "a red sneaker on a white table"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t,
		"A red sneaker on a white table, professional product photography, studio lighting, clean background.",
		body["enhanced"],
	)
}

func TestRouterRejectsInvalidSessionToken(t *testing.T) {
	handler := NewRouter(nil, nil, testConfig()).Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/current", nil)
	req.Header.Set("Authorization", "Bearer bogus")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterCurrentSessionWithoutToken(t *testing.T) {
	handler := NewRouter(nil, nil, testConfig()).Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/current", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterUnknownRoute(t *testing.T) {
	handler := NewRouter(nil, nil, testConfig()).Setup()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
