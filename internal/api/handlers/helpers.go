package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/voicecanvas/voicecanvas/internal/audio"
	"github.com/voicecanvas/voicecanvas/internal/gallery"
	"github.com/voicecanvas/voicecanvas/internal/imagegen"
	"github.com/voicecanvas/voicecanvas/internal/transcribe"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps pipeline errors onto HTTP statuses: invalid uploads
// are the client's fault, undecodable audio is unprocessable, and provider
// failures surface as bad gateway.
func writeServiceError(w http.ResponseWriter, err error) {
	var (
		validationErr *audio.ValidationError
		decodeErr     *audio.DecodeError
		exhaustedErr  *transcribe.ExhaustedError
		genErr        *imagegen.GenerationError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &decodeErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &exhaustedErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &genErr):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, gallery.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
