package handlers

import (
	"net/http"

	"github.com/voicecanvas/voicecanvas/internal/session"
	"github.com/voicecanvas/voicecanvas/internal/transcribe"
	"github.com/voicecanvas/voicecanvas/internal/voice"
)

type VoiceHandler struct {
	svc *voice.Service
}

func NewVoiceHandler(svc *voice.Service) *VoiceHandler {
	return &VoiceHandler{svc: svc}
}

// Transcribe accepts a multipart audio upload and runs the full pipeline:
// validate, normalize, transcribe, enhance. With a session attached the
// resulting prompts are persisted into it.
func (h *VoiceHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	modelSize := r.FormValue("model_size")
	if modelSize != "" && !transcribe.ValidSizes[modelSize] {
		writeError(w, http.StatusBadRequest, "model_size must be one of tiny, base, small, medium, large")
		return
	}

	language := r.FormValue("language")
	if !validLanguage(language) {
		writeError(w, http.StatusBadRequest, "language must be empty or a two-letter lowercase code")
		return
	}

	sess, _ := session.FromContext(r.Context())

	outcome, err := h.svc.Transcribe(r.Context(), voice.Request{
		Filename:  header.Filename,
		Size:      header.Size,
		Audio:     file,
		ModelSize: modelSize,
		Language:  language,
		Session:   sess,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// validLanguage accepts "" (auto-detect) or an ISO-639-1 style two-letter
// lowercase code.
func validLanguage(lang string) bool {
	if lang == "" {
		return true
	}
	if len(lang) != 2 {
		return false
	}
	for _, c := range lang {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
