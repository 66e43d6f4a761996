package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const sessionKey contextKey = "session"

// WithSession stores a session in the context.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// FromContext retrieves the session from the context, if one was attached.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok
}

// Middleware resolves bearer tokens into sessions. Requests without a token
// pass through untouched; handlers that require a session reject those
// themselves. A token that is present but invalid or expired is a hard 401.
type Middleware struct {
	tokens *Tokens
	store  *Store
}

func NewMiddleware(tokens *Tokens, store *Store) *Middleware {
	return &Middleware{tokens: tokens, store: store}
}

func (m *Middleware) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.tokens.Parse(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		sess, err := m.store.Get(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "session not found or expired")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
