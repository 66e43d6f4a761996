package prompt

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

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Rewriter reworks a prompt through an AI backend. Backends fail fast on
// missing credentials or empty prompts; nothing is retried.
type Rewriter interface {
	Rewrite(ctx context.Context, prompt string) (string, error)
	Name() string
}

// BriaRewriter calls the Bria prompt enhancement endpoint.
type BriaRewriter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewBriaRewriter(apiKey, baseURL string) *BriaRewriter {
	if baseURL == "" {
		baseURL = "https://engine.prod.bria-api.com"
	}
	return &BriaRewriter{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (b *BriaRewriter) Name() string { return "bria" }

func (b *BriaRewriter) Rewrite(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is empty")
	}
	if b.apiKey == "" {
		return "", errors.New("bria api key is not configured (set BRIA_API_KEY)")
	}

	payload, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", b.baseURL+"/v1/prompt_enhancer", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api_token", b.apiKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("prompt enhancer request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("prompt enhancer failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp struct {
		EnhancedPrompt string `json:"enhanced_prompt"`
		Prompt         string `json:"prompt"`
		Result         string `json:"result"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	// The endpoint has answered under different keys across versions.
	for _, candidate := range []string{apiResp.EnhancedPrompt, apiResp.Prompt, apiResp.Result} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("prompt enhancer returned no prompt: %s", string(respBody))
}

// rewriteSystemPrompt steers the model toward one richer image prompt
// instead of a conversation.
const rewriteSystemPrompt = "You rewrite short product descriptions into a single vivid prompt " +
	"for an image generation model. Keep the subject, add concrete visual detail about " +
	"composition, lighting, and setting, and reply with the rewritten prompt only."

// AnthropicRewriter rewrites prompts through the Anthropic Messages API.
type AnthropicRewriter struct {
	client anthropic.Client
	model  string
	hasKey bool
}

func NewAnthropicRewriter(apiKey, model string) *AnthropicRewriter {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	return &AnthropicRewriter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		hasKey: apiKey != "",
	}
}

func (a *AnthropicRewriter) Name() string { return "anthropic" }

func (a *AnthropicRewriter) Rewrite(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is empty")
	}
	if !a.hasKey {
		return "", errors.New("anthropic api key is not configured (set ANTHROPIC_API_KEY)")
	}

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: rewriteSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic rewrite: %w", err)
	}

	var out string
	for _, block := range resp.Content {
		if block.Type == "text" {
			out += block.Text
		}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("anthropic returned no text")
	}
	return out, nil
}
