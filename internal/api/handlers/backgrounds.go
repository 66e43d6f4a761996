package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/voicecanvas/voicecanvas/internal/background"
	"github.com/voicecanvas/voicecanvas/internal/queue"
	"github.com/voicecanvas/voicecanvas/internal/usage"
)

type BackgroundHandler struct {
	remover *background.Client
	queue   *queue.Client
	usage   *usage.Recorder
}

func NewBackgroundHandler(remover *background.Client, qc *queue.Client, rec *usage.Recorder) *BackgroundHandler {
	return &BackgroundHandler{remover: remover, queue: qc, usage: rec}
}

type removeRequest struct {
	ImageURL          string `json:"image_url"`
	ImageData         string `json:"image_data"` // base64
	ContentModeration bool   `json:"content_moderation"`
	CallbackURL       string `json:"callback_url"`
}

// Remove strips the background from an image synchronously.
func (h *BackgroundHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ImageURL == "" && req.ImageData == "" {
		writeError(w, http.StatusBadRequest, "either image_url or image_data required")
		return
	}
	if req.ImageURL != "" && req.ImageData != "" {
		writeError(w, http.StatusBadRequest, "image_url and image_data are mutually exclusive")
		return
	}

	var imageBytes []byte
	if req.ImageData != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			writeError(w, http.StatusBadRequest, "image_data is not valid base64")
			return
		}
		imageBytes = decoded
	}

	done := usage.Start()
	result, err := h.remover.Remove(r.Context(), background.Request{
		ImageURL:          req.ImageURL,
		ImageData:         imageBytes,
		ContentModeration: req.ContentModeration,
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	h.usage.Record(r.Context(), usage.Entry{
		Provider:  "bria",
		Operation: "background_removal",
		Status:    status,
		LatencyMs: done(),
		SessionID: sessionIDFrom(r),
	})

	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// RemoveAsync queues the removal. The result only exists at the provider, so
// a callback URL is mandatory here: without one the outcome would be lost.
func (h *BackgroundHandler) RemoveAsync(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "image_url required for async removal")
		return
	}
	if req.CallbackURL == "" {
		writeError(w, http.StatusBadRequest, "callback_url required for async removal")
		return
	}

	if err := h.queue.EnqueueBackgroundRemove(queue.BackgroundRemovePayload{
		ImageURL:          req.ImageURL,
		ContentModeration: req.ContentModeration,
		CallbackURL:       req.CallbackURL,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "enqueue removal: "+err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":    "accepted",
		"image_url": req.ImageURL,
	})
}
