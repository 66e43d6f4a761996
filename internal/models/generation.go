package models

import (
	"time"

	"github.com/google/uuid"
)

type Generation struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SessionID   *uuid.UUID `json:"session_id,omitempty" db:"session_id"`
	Prompt      string     `json:"prompt" db:"prompt"`
	Source      string     `json:"source" db:"source"`
	Provider    string     `json:"provider" db:"provider"`
	Status      string     `json:"status" db:"status"`
	URL         string     `json:"url,omitempty" db:"url"`
	Error       string     `json:"error,omitempty" db:"error"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

const (
	GenStatusPending = "pending"
	GenStatusReady   = "ready"
	GenStatusFailed  = "failed"
)

const (
	GenSourceVoice = "voice"
	GenSourceAPI   = "api"
)
