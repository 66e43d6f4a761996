package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/voicecanvas/voicecanvas/internal/prompt"
	"github.com/voicecanvas/voicecanvas/internal/session"
	"github.com/voicecanvas/voicecanvas/internal/usage"
)

type PromptHandler struct {
	rewriter prompt.Rewriter
	usage    *usage.Recorder
}

func NewPromptHandler(rewriter prompt.Rewriter, rec *usage.Recorder) *PromptHandler {
	return &PromptHandler{rewriter: rewriter, usage: rec}
}

// Enhance applies the deterministic keyword rules. No provider involved.
func (h *PromptHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"original": req.Text,
		"enhanced": prompt.Enhance(req.Text),
	})
}

// Rewrite sends the prompt to the configured AI rewriter.
func (h *PromptHandler) Rewrite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt required")
		return
	}

	done := usage.Start()
	rewritten, err := h.rewriter.Rewrite(r.Context(), req.Prompt)

	status := "ok"
	if err != nil {
		status = "error"
	}
	h.usage.Record(r.Context(), usage.Entry{
		Provider:  h.rewriter.Name(),
		Operation: "prompt_rewrite",
		Status:    status,
		LatencyMs: done(),
		SessionID: sessionIDFrom(r),
	})

	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"original":  req.Prompt,
		"rewritten": rewritten,
	})
}

func sessionIDFrom(r *http.Request) *uuid.UUID {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		return nil
	}
	id := sess.ID
	return &id
}
