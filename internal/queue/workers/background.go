package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/voicecanvas/voicecanvas/internal/background"
	"github.com/voicecanvas/voicecanvas/internal/notify"
	"github.com/voicecanvas/voicecanvas/internal/queue"
	"github.com/voicecanvas/voicecanvas/internal/usage"
)

// BackgroundWorker runs queued background removals. The result exists only in
// the provider's CDN, so the callback is the sole delivery channel; the API
// layer refuses to enqueue without one.
type BackgroundWorker struct {
	remover  *background.Client
	usage    *usage.Recorder
	notifier *notify.Dispatcher
}

func NewBackgroundWorker(remover *background.Client, rec *usage.Recorder, n *notify.Dispatcher) *BackgroundWorker {
	return &BackgroundWorker{remover: remover, usage: rec, notifier: n}
}

func (w *BackgroundWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.BackgroundRemovePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("removing background", "image_url", payload.ImageURL)

	done := usage.Start()
	result, remErr := w.remover.Remove(ctx, background.Request{
		ImageURL:          payload.ImageURL,
		ContentModeration: payload.ContentModeration,
	})

	status := "ok"
	if remErr != nil {
		status = "error"
	}
	w.usage.Record(ctx, usage.Entry{
		Provider:  "bria",
		Operation: "background_removal",
		Status:    status,
		LatencyMs: done(),
	})

	if remErr != nil {
		slog.Error("background removal failed", "image_url", payload.ImageURL, "error", remErr)
		w.notifier.Send(payload.CallbackURL, notify.EventBackgroundFailed, map[string]string{
			"image_url": payload.ImageURL,
			"error":     remErr.Error(),
		})
		return nil
	}

	w.notifier.Send(payload.CallbackURL, notify.EventBackgroundCompleted, map[string]string{
		"image_url":  payload.ImageURL,
		"result_url": result.ResultURL,
	})

	slog.Info("background removed", "image_url", payload.ImageURL)
	return nil
}
