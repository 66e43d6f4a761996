// Package workers implements the asynq task handlers consumed by cmd/worker.
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/voicecanvas/voicecanvas/internal/gallery"
	"github.com/voicecanvas/voicecanvas/internal/imagegen"
	"github.com/voicecanvas/voicecanvas/internal/notify"
	"github.com/voicecanvas/voicecanvas/internal/queue"
	"github.com/voicecanvas/voicecanvas/internal/usage"
)

// GenerationWorker turns queued prompts into images. Provider failures are
// terminal: the gallery row is marked failed, the callback fires, and the
// task completes so asynq does not retry.
type GenerationWorker struct {
	gallery    *gallery.Service
	generators *imagegen.Registry
	usage      *usage.Recorder
	notifier   *notify.Dispatcher
}

func NewGenerationWorker(g *gallery.Service, reg *imagegen.Registry, rec *usage.Recorder, n *notify.Dispatcher) *GenerationWorker {
	return &GenerationWorker{gallery: g, generators: reg, usage: rec, notifier: n}
}

func (w *GenerationWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.ImageGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	genID, err := uuid.Parse(payload.GenerationID)
	if err != nil {
		return fmt.Errorf("parse generation ID: %w", err)
	}

	slog.Info("generating image", "generation_id", genID, "provider", payload.Provider)

	var sessionID *uuid.UUID
	if payload.SessionID != "" {
		if id, err := uuid.Parse(payload.SessionID); err == nil {
			sessionID = &id
		}
	}

	done := usage.Start()
	img, genErr := w.generators.Generate(ctx, payload.Provider, imagegen.Request{
		Prompt:     payload.Prompt,
		NumResults: payload.NumResults,
	})

	status := "ok"
	model := ""
	if genErr != nil {
		status = "error"
	} else {
		model = img.Model
	}
	w.usage.Record(ctx, usage.Entry{
		Provider:  providerName(payload.Provider, img),
		Operation: "image_generation",
		Model:     model,
		Status:    status,
		LatencyMs: done(),
		SessionID: sessionID,
	})

	if genErr != nil {
		slog.Error("image generation failed", "generation_id", genID, "error", genErr)
		if err := w.gallery.MarkFailed(ctx, genID, genErr.Error()); err != nil {
			slog.Error("failed to mark generation failed", "generation_id", genID, "error", err)
		}
		w.notifier.Send(payload.CallbackURL, notify.EventGenerationFailed, map[string]string{
			"generation_id": genID.String(),
			"error":         genErr.Error(),
		})
		return nil
	}

	if err := w.gallery.MarkReady(ctx, genID, img.URL); err != nil {
		slog.Error("failed to mark generation ready", "generation_id", genID, "error", err)
	}
	w.notifier.Send(payload.CallbackURL, notify.EventGenerationCompleted, map[string]string{
		"generation_id": genID.String(),
		"url":           img.URL,
		"provider":      img.Provider,
	})

	slog.Info("image generated", "generation_id", genID, "provider", img.Provider)
	return nil
}

func providerName(requested string, img *imagegen.Image) string {
	if img != nil && img.Provider != "" {
		return img.Provider
	}
	if requested != "" {
		return requested
	}
	return "unknown"
}
