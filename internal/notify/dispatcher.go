// Package notify delivers completion callbacks for async jobs. Callers hand
// over a callback URL when enqueueing work; when the job finishes, a signed
// JSON event is POSTed there. Delivery is fire and forget.
package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	EventGenerationCompleted = "generation.completed"
	EventGenerationFailed    = "generation.failed"
	EventBackgroundCompleted = "background.completed"
	EventBackgroundFailed    = "background.failed"
)

type Delivery struct {
	URL     string
	Event   string
	Payload []byte
}

// Dispatcher pushes deliveries through a bounded queue. When the queue is
// full new deliveries are dropped with a warning rather than blocking the
// worker that produced them.
type Dispatcher struct {
	secret     string
	httpClient *http.Client
	deliveries chan Delivery
}

func NewDispatcher(secret string) *Dispatcher {
	d := &Dispatcher{
		secret: secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		deliveries: make(chan Delivery, 256),
	}
	go d.processLoop()
	return d
}

// Send serializes the payload and queues it for delivery. A missing URL is a
// no-op so callers can pass the callback through unconditionally.
func (d *Dispatcher) Send(url, event string, payload interface{}) {
	if url == "" {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("callback payload encoding failed", "event", event, "error", err)
		return
	}

	select {
	case d.deliveries <- Delivery{URL: url, Event: event, Payload: data}:
	default:
		slog.Warn("callback queue full, dropping", "event", event, "url", url)
	}
}

func (d *Dispatcher) processLoop() {
	for del := range d.deliveries {
		d.deliver(del)
	}
}

func (d *Dispatcher) deliver(del Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "POST", del.URL, bytes.NewReader(del.Payload))
	if err != nil {
		slog.Error("callback request creation failed", "event", del.Event, "error", err)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Callback-Event", del.Event)
	req.Header.Set("X-Callback-Signature", Sign(del.Payload, d.secret))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		slog.Warn("callback delivery failed", "event", del.Event, "url", del.URL, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Warn("callback received non-success response", "event", del.Event, "status", resp.StatusCode)
	}
}

// Sign computes the signature receivers verify: an HMAC-SHA256 of the raw
// request body, hex encoded with a "sha256=" prefix.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
