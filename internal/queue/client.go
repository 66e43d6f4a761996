// Package queue defines the asynq task types for asynchronous image work and
// the producer-side client. Tasks carry no retry budget: provider calls are
// not retried beyond their documented fallbacks, so a failed job is terminal
// and reported through the gallery status and the callback.
package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/voicecanvas/voicecanvas/internal/config"
)

type Client struct {
	client *asynq.Client
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueImageGenerate(payload ImageGeneratePayload) error {
	return c.enqueue(TypeImageGenerate, payload, asynq.MaxRetry(0), asynq.Timeout(5*time.Minute))
}

func (c *Client) EnqueueBackgroundRemove(payload BackgroundRemovePayload) error {
	return c.enqueue(TypeBackgroundRemove, payload, asynq.MaxRetry(0), asynq.Timeout(5*time.Minute))
}

func (c *Client) enqueue(taskType string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(taskType, data)
	_, err = c.client.Enqueue(task, opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
