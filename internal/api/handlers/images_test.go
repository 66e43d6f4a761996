package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/voicecanvas/voicecanvas/internal/gallery"
	"github.com/voicecanvas/voicecanvas/internal/imagegen"
	"github.com/voicecanvas/voicecanvas/internal/models"
	"github.com/voicecanvas/voicecanvas/internal/session"
)

type stubGenerator struct {
	name string
	img  *imagegen.Image
	err  error
}

func (s *stubGenerator) Generate(ctx context.Context, req imagegen.Request) (*imagegen.Image, error) {
	return s.img, s.err
}

func (s *stubGenerator) Name() string { return s.name }

func requestWithSession(enhanced string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generations", nil)
	sess := &session.Session{ID: uuid.New(), EnhancedPrompt: enhanced}
	return req.WithContext(session.WithSession(req.Context(), sess))
}

func TestResolvePrompt(t *testing.T) {
	t.Run("explicit prompt wins", func(t *testing.T) {
		prompt, source := resolvePrompt(requestWithSession("from session"), "from request")
		assert.Equal(t, "from request", prompt)
		assert.Equal(t, models.GenSourceAPI, source)
	})

	t.Run("falls back to session", func(t *testing.T) {
		prompt, source := resolvePrompt(requestWithSession("from session"), "")
		assert.Equal(t, "from session", prompt)
		assert.Equal(t, models.GenSourceVoice, source)
	})

	t.Run("no prompt anywhere", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generations", nil)
		prompt, _ := resolvePrompt(req, "")
		assert.Empty(t, prompt)
	})

	t.Run("session without enhanced prompt", func(t *testing.T) {
		prompt, _ := resolvePrompt(requestWithSession(""), "")
		assert.Empty(t, prompt)
	})
}

func TestGenerateRejectsBeforeProviderCall(t *testing.T) {
	registry := imagegen.NewRegistry("stub")
	registry.Register(&stubGenerator{name: "stub"})
	h := NewImageHandler(gallery.NewService(nil, nil), registry, nil, nil)

	t.Run("unknown provider", func(t *testing.T) {
		body := strings.NewReader(`{"prompt": "a red sneaker", "provider": "nope"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generations", body)
		rr := httptest.NewRecorder()

		h.Generate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "not configured")
	})

	t.Run("no prompt", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generations", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()

		h.Generate(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "prompt required")
	})

	t.Run("gallery unavailable", func(t *testing.T) {
		body := strings.NewReader(`{"prompt": "a red sneaker"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/images/generations", body)
		rr := httptest.NewRecorder()

		h.Generate(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "gallery database is not configured")
	})
}
