package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voicecanvas/voicecanvas/pkg/respshape"
)

// Bria generates HD images through the Bria text-to-image API.
type Bria struct {
	apiKey       string
	baseURL      string
	modelVersion string
	httpClient   *http.Client
}

type BriaConfig struct {
	APIKey       string
	BaseURL      string // default: "https://engine.prod.bria-api.com"
	ModelVersion string // default: "2.2"
}

func NewBria(cfg BriaConfig) *Bria {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://engine.prod.bria-api.com"
	}
	if cfg.ModelVersion == "" {
		cfg.ModelVersion = "2.2"
	}
	return &Bria{
		apiKey:       cfg.APIKey,
		baseURL:      cfg.BaseURL,
		modelVersion: cfg.ModelVersion,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (b *Bria) Name() string { return "bria" }

func (b *Bria) Generate(ctx context.Context, req Request) (*Image, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is empty")
	}
	if b.apiKey == "" {
		return nil, errors.New("bria api key is not configured (set BRIA_API_KEY)")
	}

	numResults := req.NumResults
	if numResults <= 0 {
		numResults = 1
	}

	payload, err := json.Marshal(map[string]any{
		"prompt":      req.Prompt,
		"num_results": numResults,
		"sync":        true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-image/hd/%s", b.baseURL, b.modelVersion)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api_token", b.apiKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("image generation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &GenerationError{Provider: "bria", Status: resp.StatusCode, Reason: string(respBody)}
	}

	var parsed map[string]any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	imageURL, ok := respshape.ExtractImageURL(parsed)
	if !ok {
		return nil, &GenerationError{Provider: "bria", Reason: "no image URL in response: " + string(respBody)}
	}

	return &Image{
		URL:      imageURL,
		Provider: "bria",
		Model:    "bria-hd-" + b.modelVersion,
	}, nil
}
