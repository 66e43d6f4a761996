package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if withFile {
		part, err := mw.CreateFormFile("file", "memo.wav")
		require.NoError(t, err)
		part.Write([]byte("RIFF fake audio"))
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestTranscribeRejectsBeforePipeline(t *testing.T) {
	// Validation failures never reach the service, so a nil one is safe.
	h := NewVoiceHandler(nil)

	tests := []struct {
		name     string
		fields   map[string]string
		withFile bool
		wantMsg  string
	}{
		{"missing file", nil, false, "file required"},
		{"bad model size", map[string]string{"model_size": "enormous"}, true, "model_size"},
		{"uppercase language", map[string]string{"language": "EN"}, true, "language"},
		{"three letter language", map[string]string{"language": "eng"}, true, "language"},
		{"numeric language", map[string]string{"language": "e1"}, true, "language"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.fields, tt.withFile)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/voice/transcriptions", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			h.Transcribe(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMsg)
		})
	}
}

func TestValidLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"", true},
		{"en", true},
		{"fr", true},
		{"EN", false},
		{"eng", false},
		{"e", false},
		{"e1", false},
		{"日本", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, validLanguage(tt.lang), "language %q", tt.lang)
	}
}
