// Package voice runs the upload-to-prompt pipeline: ingest an audio clip,
// normalize it, transcribe it, and shape the transcript into an
// image-generation prompt.
package voice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/voicecanvas/voicecanvas/internal/audio"
	"github.com/voicecanvas/voicecanvas/internal/prompt"
	"github.com/voicecanvas/voicecanvas/internal/session"
	"github.com/voicecanvas/voicecanvas/internal/transcribe"
	"github.com/voicecanvas/voicecanvas/internal/usage"
)

// Service owns the transcription engine. The engine is single-request by
// contract, so every use happens under the service mutex; the rest of the
// pipeline is safe to run concurrently.
type Service struct {
	normalizer *audio.Normalizer
	engine     *transcribe.Engine
	sessions   *session.Store
	usage      *usage.Recorder

	mu sync.Mutex
}

func NewService(normalizer *audio.Normalizer, engine *transcribe.Engine, sessions *session.Store, rec *usage.Recorder) *Service {
	return &Service{
		normalizer: normalizer,
		engine:     engine,
		sessions:   sessions,
		usage:      rec,
	}
}

type Request struct {
	Filename  string
	Size      int64
	Audio     io.Reader
	ModelSize string
	Language  string
	Session   *session.Session
}

type Outcome struct {
	Transcription  *transcribe.Result `json:"transcription"`
	OriginalPrompt string             `json:"original_prompt"`
	EnhancedPrompt string             `json:"enhanced_prompt"`
}

// Transcribe runs the full pipeline. Both temp files (the upload and the
// normalized rendering) are removed before return on every path. When the
// request carries a session, the resulting prompts are persisted into it;
// a session save failure downgrades to a warning because the caller still
// gets the transcript.
func (s *Service) Transcribe(ctx context.Context, req Request) (*Outcome, error) {
	asset, err := audio.Ingest(req.Filename, req.Size, req.Audio)
	if err != nil {
		return nil, err
	}
	defer asset.Remove()

	treq := transcribe.Request{
		FilePath: asset.Path,
		Language: req.Language,
	}

	pcm, err := s.normalizer.Normalize(ctx, asset)
	if err != nil {
		// Transcribe the original upload as-is; without decoded samples the
		// in-memory retry tier is unavailable.
		var decErr *audio.DecodeError
		if errors.As(err, &decErr) {
			slog.Warn("audio normalization failed, using original file",
				"filename", asset.Filename,
				"format", decErr.Format,
				"error", err,
			)
		} else {
			slog.Warn("audio normalization failed, using original file",
				"filename", asset.Filename,
				"error", err,
			)
		}
	} else {
		defer pcm.Remove()
		treq.FilePath = pcm.Path
		treq.Samples = pcm.Samples
		treq.SampleRate = pcm.Rate
	}

	s.mu.Lock()
	loadErr := s.engine.LoadModel(ctx, req.ModelSize)
	if loadErr != nil {
		s.mu.Unlock()
		return nil, loadErr
	}

	done := usage.Start()
	result, err := s.engine.Transcribe(ctx, treq)
	model := "whisper-" + s.engine.ModelSize()
	s.mu.Unlock()

	status := "ok"
	if err != nil {
		status = "error"
	}
	s.usage.Record(ctx, usage.Entry{
		Provider:  "whisper",
		Operation: "transcription",
		Model:     model,
		Status:    status,
		LatencyMs: done(),
		SessionID: sessionUUID(req.Session),
	})

	if err != nil {
		return nil, err
	}

	enhanced := prompt.Enhance(result.Text)
	outcome := &Outcome{
		Transcription:  result,
		OriginalPrompt: result.Text,
		EnhancedPrompt: enhanced,
	}

	if req.Session != nil {
		req.Session.OriginalPrompt = result.Text
		req.Session.EnhancedPrompt = enhanced
		req.Session.ModelSize = s.engine.ModelSize()
		req.Session.Transcription = result
		if err := s.sessions.Save(ctx, req.Session); err != nil {
			slog.Warn("session save failed after transcription",
				"session_id", req.Session.ID,
				"error", err,
			)
		}
	}

	return outcome, nil
}

func sessionUUID(sess *session.Session) *uuid.UUID {
	if sess == nil {
		return nil
	}
	id := sess.ID
	return &id
}
