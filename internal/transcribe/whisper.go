package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Client talks to a Whisper-compatible HTTP server (whisper.cpp or similar)
// speaking the OpenAI /audio/transcriptions multipart contract.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client with sensible defaults applied.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Options are the per-call fields of the multipart request.
type Options struct {
	ModelSize string
	Language  string
	Debug     bool
}

// Response is the verbose_json payload of /audio/transcriptions.
type Response struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Text       string  `json:"text"`
	AvgLogprob float64 `json:"avg_logprob"`
}

// TranscribeFile uploads the audio file at path.
func (c *Client) TranscribeFile(ctx context.Context, path string, opts Options) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	return c.transcribe(ctx, filepath.Base(path), f, opts)
}

// TranscribeReader uploads audio bytes from r under the given filename.
func (c *Client) TranscribeReader(ctx context.Context, filename string, r io.Reader, opts Options) (*Response, error) {
	return c.transcribe(ctx, filename, r, opts)
}

func (c *Client) transcribe(ctx context.Context, filename string, r io.Reader, opts Options) (*Response, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err = io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	_ = mw.WriteField("model", "whisper-"+opts.ModelSize)
	_ = mw.WriteField("response_format", "verbose_json")
	if opts.Language != "" {
		_ = mw.WriteField("language", opts.Language)
	}
	if opts.Debug {
		_ = mw.WriteField("debug_mode", "true")
	}

	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcription failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp Response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &apiResp, nil
}

// LoadModel asks the server to make the given model size resident.
func (c *Client) LoadModel(ctx context.Context, size string) error {
	payload, err := json.Marshal(map[string]string{"model": size})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/models/load", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("model load request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("model load failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}
