// Package background removes image backgrounds through the Bria editing API.
package background

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voicecanvas/voicecanvas/pkg/respshape"
)

const (
	primaryPath   = "/v1/background/remove"
	alternatePath = "/v1/erase_background"
)

// Client calls the background removal endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://engine.prod.bria-api.com"
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Request carries exactly one image input: a URL or raw bytes.
type Request struct {
	ImageURL          string `json:"image_url,omitempty"`
	ImageData         []byte `json:"image_data,omitempty"`
	ContentModeration bool   `json:"content_moderation,omitempty"`
}

// Result is the normalized response: whatever layout the endpoint answered
// with collapses to one result URL.
type Result struct {
	ResultURL string `json:"result_url"`
}

// Remove strips the background from the image. A 404 from the primary
// endpoint triggers one retry against the alternate endpoint (the path has
// moved between API revisions); any other failure is fatal for the call.
func (c *Client) Remove(ctx context.Context, req Request) (*Result, error) {
	if c.apiKey == "" {
		return nil, errors.New("bria api key is not configured (set BRIA_API_KEY)")
	}
	if req.ImageURL == "" && len(req.ImageData) == 0 {
		return nil, errors.New("either image_url or image data must be provided")
	}
	if req.ImageURL != "" && len(req.ImageData) > 0 {
		return nil, errors.New("image_url and image data are mutually exclusive")
	}

	body := map[string]any{
		"content_moderation": req.ContentModeration,
	}
	if req.ImageURL != "" {
		body["image_url"] = req.ImageURL
	} else {
		body["file"] = base64.StdEncoding.EncodeToString(req.ImageData)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	result, status, err := c.post(ctx, primaryPath, payload)
	if err != nil && status == http.StatusNotFound {
		result, _, err = c.post(ctx, alternatePath, payload)
		if err != nil {
			return nil, fmt.Errorf("alternate endpoint: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte) (*Result, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("api_token", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("background removal request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("background removal failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse response: %w", err)
	}

	url, ok := respshape.ExtractResultURL(parsed)
	if !ok {
		return nil, resp.StatusCode, fmt.Errorf("no result URL in response: %s", string(respBody))
	}

	return &Result{ResultURL: url}, resp.StatusCode, nil
}
