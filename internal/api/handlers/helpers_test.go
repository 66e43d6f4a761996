package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voicecanvas/voicecanvas/internal/audio"
	"github.com/voicecanvas/voicecanvas/internal/gallery"
	"github.com/voicecanvas/voicecanvas/internal/imagegen"
	"github.com/voicecanvas/voicecanvas/internal/transcribe"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			"upload validation",
			&audio.ValidationError{Reason: "file too large"},
			http.StatusBadRequest,
		},
		{
			"wrapped validation",
			fmt.Errorf("ingest: %w", &audio.ValidationError{Reason: "bad extension"}),
			http.StatusBadRequest,
		},
		{
			"decode failure",
			&audio.DecodeError{Format: "wav", Err: errors.New("truncated")},
			http.StatusUnprocessableEntity,
		},
		{
			"all tiers failed",
			&transcribe.ExhaustedError{Attempts: []error{errors.New("boom")}},
			http.StatusBadGateway,
		},
		{
			"generation failure",
			&imagegen.GenerationError{Provider: "bria", Status: 500},
			http.StatusBadGateway,
		},
		{
			"missing generation",
			gallery.ErrNotFound,
			http.StatusNotFound,
		},
		{
			"unknown",
			errors.New("something else"),
			http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}
