package handlers

import (
	"net/http"

	"github.com/voicecanvas/voicecanvas/internal/session"
)

type SessionHandler struct {
	store  *session.Store
	tokens *session.Tokens
}

func NewSessionHandler(store *session.Store, tokens *session.Tokens) *SessionHandler {
	return &SessionHandler{store: store, tokens: tokens}
}

// Create opens a fresh session and returns the bearer token that addresses it.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Create(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create session: "+err.Error())
		return
	}

	token, err := h.tokens.Issue(sess.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue token: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token":   token,
		"session": sess,
	})
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "session token required")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// Clear drops the transcription and prompts but keeps the session alive.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "session token required")
		return
	}

	sess.ClearTranscription()
	if err := h.store.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "save session: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sess)
}
