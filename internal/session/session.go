// Package session holds per-client studio state in Redis: the latest
// transcription, the working prompts, and the chosen model size. Sessions
// replace ambient globals; every operation receives its session explicitly.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/voicecanvas/voicecanvas/internal/transcribe"
)

// ErrNotFound reports a missing or expired session.
var ErrNotFound = errors.New("session not found")

type Session struct {
	ID             uuid.UUID          `json:"id"`
	OriginalPrompt string             `json:"original_prompt,omitempty"`
	EnhancedPrompt string             `json:"enhanced_prompt,omitempty"`
	ModelSize      string             `json:"model_size,omitempty"`
	Transcription  *transcribe.Result `json:"transcription,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ClearTranscription resets the voice-derived fields while keeping the
// session itself alive.
func (s *Session) ClearTranscription() {
	s.OriginalPrompt = ""
	s.EnhancedPrompt = ""
	s.Transcription = nil
}

// Store keeps sessions as JSON blobs in Redis. Every Save refreshes the TTL,
// so active sessions slide forward and idle ones expire.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return "session:" + id.String()
}

func (s *Store) Create(ctx context.Context) (*Session, error) {
	now := time.Now().UTC()
	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	val, err := s.client.Get(ctx, key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

func (s *Store) Save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}
