package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRewriter struct {
	out string
	err error
}

func (s *stubRewriter) Rewrite(ctx context.Context, prompt string) (string, error) {
	return s.out, s.err
}

func (s *stubRewriter) Name() string { return "stub" }

func TestEnhanceEndpoint(t *testing.T) {
	h := NewPromptHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/enhance",
		strings.NewReader(`{"text": "a red sneaker on a white table"}`))
	rec := httptest.NewRecorder()
	h.Enhance(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "a red sneaker on a white table", body["original"])
	assert.Equal(t,
		"A red sneaker on a white table, professional product photography, studio lighting, clean background.",
		body["enhanced"],
	)
}

func TestEnhanceEndpointRejectsEmpty(t *testing.T) {
	h := NewPromptHandler(nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty text", `{"text": ""}`},
		{"missing field", `{}`},
		{"malformed json", `{"text"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/enhance", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Enhance(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRewriteEndpoint(t *testing.T) {
	h := NewPromptHandler(&stubRewriter{out: "A cinematic red sneaker"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/rewrite",
		strings.NewReader(`{"prompt": "a red sneaker"}`))
	rec := httptest.NewRecorder()
	h.Rewrite(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "a red sneaker", body["original"])
	assert.Equal(t, "A cinematic red sneaker", body["rewritten"])
}

func TestRewriteEndpointProviderFailure(t *testing.T) {
	h := NewPromptHandler(&stubRewriter{err: errors.New("upstream unavailable")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/rewrite",
		strings.NewReader(`{"prompt": "a red sneaker"}`))
	rec := httptest.NewRecorder()
	h.Rewrite(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream unavailable")
}

func TestRewriteEndpointRejectsEmptyPrompt(t *testing.T) {
	h := NewPromptHandler(&stubRewriter{out: "unused"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/prompts/rewrite", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.Rewrite(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
