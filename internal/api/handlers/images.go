package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voicecanvas/voicecanvas/internal/gallery"
	"github.com/voicecanvas/voicecanvas/internal/imagegen"
	"github.com/voicecanvas/voicecanvas/internal/models"
	"github.com/voicecanvas/voicecanvas/internal/queue"
	"github.com/voicecanvas/voicecanvas/internal/session"
	"github.com/voicecanvas/voicecanvas/internal/usage"
)

type ImageHandler struct {
	gallery    *gallery.Service
	generators *imagegen.Registry
	queue      *queue.Client
	usage      *usage.Recorder
	httpClient *http.Client
}

func NewImageHandler(g *gallery.Service, reg *imagegen.Registry, qc *queue.Client, rec *usage.Recorder) *ImageHandler {
	return &ImageHandler{
		gallery:    g,
		generators: reg,
		queue:      qc,
		usage:      rec,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	Provider    string `json:"provider"`
	NumResults  int    `json:"num_results"`
	CallbackURL string `json:"callback_url"`
}

// resolvePrompt falls back to the session's enhanced prompt, which is how a
// voice transcription becomes an image without re-sending the text.
func resolvePrompt(r *http.Request, explicit string) (prompt, source string) {
	if explicit != "" {
		return explicit, models.GenSourceAPI
	}
	if sess, ok := session.FromContext(r.Context()); ok && sess.EnhancedPrompt != "" {
		return sess.EnhancedPrompt, models.GenSourceVoice
	}
	return "", ""
}

// Generate runs a generation synchronously and returns the finished gallery
// record.
func (h *ImageHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promptText, source := resolvePrompt(r, req.Prompt)
	if promptText == "" {
		writeError(w, http.StatusBadRequest, "prompt required (none in request or session)")
		return
	}

	generator, err := h.generators.Generator(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	provider := generator.Name()

	gen, err := h.gallery.Create(r.Context(), gallery.CreateRequest{
		SessionID: sessionIDFrom(r),
		Prompt:    promptText,
		Source:    source,
		Provider:  provider,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	done := usage.Start()
	img, genErr := generator.Generate(r.Context(), imagegen.Request{
		Prompt:     promptText,
		NumResults: req.NumResults,
	})

	status := "ok"
	model := ""
	if genErr != nil {
		status = "error"
	} else {
		model = img.Model
	}
	h.usage.Record(r.Context(), usage.Entry{
		Provider:  provider,
		Operation: "image_generation",
		Model:     model,
		Status:    status,
		LatencyMs: done(),
		SessionID: sessionIDFrom(r),
	})

	if genErr != nil {
		if err := h.gallery.MarkFailed(r.Context(), gen.ID, genErr.Error()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":         genErr.Error(),
			"generation_id": gen.ID.String(),
		})
		return
	}

	if err := h.gallery.MarkReady(r.Context(), gen.ID, img.URL); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	final, err := h.gallery.Get(r.Context(), gen.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, final)
}

// GenerateAsync queues the generation and answers immediately with the
// pending gallery record. Progress is observable via GET or the callback.
func (h *ImageHandler) GenerateAsync(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	promptText, source := resolvePrompt(r, req.Prompt)
	if promptText == "" {
		writeError(w, http.StatusBadRequest, "prompt required (none in request or session)")
		return
	}

	generator, err := h.generators.Generator(req.Provider)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	provider := generator.Name()

	gen, err := h.gallery.Create(r.Context(), gallery.CreateRequest{
		SessionID: sessionIDFrom(r),
		Prompt:    promptText,
		Source:    source,
		Provider:  provider,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := queue.ImageGeneratePayload{
		GenerationID: gen.ID.String(),
		Prompt:       promptText,
		Provider:     provider,
		NumResults:   req.NumResults,
		CallbackURL:  req.CallbackURL,
	}
	if id := sessionIDFrom(r); id != nil {
		payload.SessionID = id.String()
	}

	if err := h.queue.EnqueueImageGenerate(payload); err != nil {
		if markErr := h.gallery.MarkFailed(r.Context(), gen.ID, "enqueue failed: "+err.Error()); markErr != nil {
			writeError(w, http.StatusInternalServerError, markErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "enqueue generation: "+err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, gen)
}

func (h *ImageHandler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid generation ID")
		return
	}

	gen, err := h.gallery.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gen)
}

// List returns the session's gallery, newest first.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "session token required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	gens, err := h.gallery.ListBySession(r.Context(), sess.ID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"images": gens, "count": len(gens)})
}

// Search finds ready generations with prompts similar to q.
func (h *ImageHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q required")
		return
	}
	k, _ := strconv.Atoi(r.URL.Query().Get("k"))

	results, err := h.gallery.SearchSimilar(r.Context(), q, k)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results, "count": len(results)})
}

// Content streams the generated image through the API so clients never touch
// the provider's CDN directly.
func (h *ImageHandler) Content(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid generation ID")
		return
	}

	gen, err := h.gallery.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if gen.Status != models.GenStatusReady || gen.URL == "" {
		writeError(w, http.StatusConflict, "generation is not ready")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), "GET", gen.URL, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		writeError(w, http.StatusBadGateway, "fetch image: "+err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		writeError(w, http.StatusBadGateway, fmt.Sprintf("image host returned status %d", resp.StatusCode))
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=voice_image_%s.png", gen.ID))
	if resp.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(resp.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)
	io.Copy(w, resp.Body)
}
