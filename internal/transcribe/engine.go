package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/voicecanvas/voicecanvas/pkg/pcm"
)

// DefaultModelSize is loaded lazily when Transcribe runs before any explicit
// LoadModel call.
const DefaultModelSize = "base"

// ValidSizes enumerates the Whisper model sizes the engine will load.
var ValidSizes = map[string]bool{
	"tiny":   true,
	"base":   true,
	"small":  true,
	"medium": true,
	"large":  true,
}

// Config configures the engine endpoints and device naming.
type Config struct {
	BaseURL     string // default: "http://localhost:8178"
	CPUBaseURL  string // empty means the CPU tier reuses BaseURL
	Device      string // reported device for the accelerated endpoint, default "cuda:0"
	DefaultSize string // model size loaded when none is requested
	Timeout     time.Duration
}

// Engine fronts a Whisper server and drives the transcription fallback
// tiers. It keeps one model size resident and reassigns its device in place
// when the CPU tier succeeds.
//
// Engine is not safe for concurrent use; callers must serialize access.
type Engine struct {
	whisper     *Client
	cpuWhisper  *Client
	device      string
	defaultSize string
	modelSize   string
	loaded      bool
}

func NewEngine(cfg Config) *Engine {
	primary := NewClient(cfg.BaseURL, cfg.Timeout)

	cpu := primary
	if cfg.CPUBaseURL != "" && cfg.CPUBaseURL != cfg.BaseURL {
		cpu = NewClient(cfg.CPUBaseURL, cfg.Timeout)
	}

	device := cfg.Device
	if device == "" {
		device = "cuda:0"
	}

	defaultSize := cfg.DefaultSize
	if defaultSize == "" {
		defaultSize = DefaultModelSize
	} else if !ValidSizes[defaultSize] {
		slog.Warn("invalid default model size, using fallback",
			"configured", defaultSize,
			"fallback", DefaultModelSize,
		)
		defaultSize = DefaultModelSize
	}

	return &Engine{
		whisper:     primary,
		cpuWhisper:  cpu,
		device:      device,
		defaultSize: defaultSize,
	}
}

// Request is one transcription call. Samples, when present, enable the
// in-memory array tier; SampleRate defaults to 16000.
type Request struct {
	FilePath   string
	Samples    []float32
	SampleRate int
	Language   string
}

// Result is the outcome of the first successful tier.
type Result struct {
	Text       string   `json:"text"`
	Language   string   `json:"language"`
	Model      string   `json:"model"`
	Device     string   `json:"device"`
	Confidence *float64 `json:"confidence,omitempty"`
	Duration   float64  `json:"duration,omitempty"`
}

// ExhaustedError reports that every transcription tier failed. It carries
// each attempt's error for diagnostics.
type ExhaustedError struct {
	Attempts []error
}

func (e *ExhaustedError) Error() string {
	msgs := make([]string, len(e.Attempts))
	for i, err := range e.Attempts {
		msgs[i] = err.Error()
	}
	return "all transcription attempts failed: " + strings.Join(msgs, "; ")
}

func (e *ExhaustedError) Unwrap() []error { return e.Attempts }

// LoadModel makes the given model size resident on the server. Loading the
// size that is already resident is a no-op.
func (e *Engine) LoadModel(ctx context.Context, size string) error {
	if size == "" {
		size = e.defaultSize
	}
	if !ValidSizes[size] {
		return fmt.Errorf("invalid model size %q", size)
	}

	if e.loaded && e.modelSize == size {
		return nil
	}

	if err := e.whisper.LoadModel(ctx, size); err != nil {
		return fmt.Errorf("loading whisper %s: %w", size, err)
	}

	e.modelSize = size
	e.loaded = true
	return nil
}

// ModelSize reports the resident model size, or the default when nothing has
// been loaded yet.
func (e *Engine) ModelSize() string {
	if e.modelSize == "" {
		return e.defaultSize
	}
	return e.modelSize
}

// Device reports the device the next attempt will run on.
func (e *Engine) Device() string { return e.device }

type attempt struct {
	name string
	run  func(ctx context.Context) (*Response, error)
}

// Transcribe runs the fallback tiers in order: the file on disk, the
// in-memory sample array when one exists, then the CPU endpoint with debug
// diagnostics. The first success wins. When every tier fails, the result is
// an *ExhaustedError collecting each attempt's error; no partial text is
// ever returned.
func (e *Engine) Transcribe(ctx context.Context, req Request) (*Result, error) {
	if !e.loaded {
		if err := e.LoadModel(ctx, e.defaultSize); err != nil {
			return nil, err
		}
	}

	opts := Options{ModelSize: e.modelSize, Language: req.Language}

	attempts := []attempt{
		{name: "file", run: func(ctx context.Context) (*Response, error) {
			return e.whisper.TranscribeFile(ctx, req.FilePath, opts)
		}},
	}

	if req.Samples != nil {
		attempts = append(attempts, attempt{name: "array", run: func(ctx context.Context) (*Response, error) {
			rate := req.SampleRate
			if rate == 0 {
				rate = 16000
			}
			wavBytes := pcm.EncodeWAV(req.Samples, rate)
			return e.whisper.TranscribeReader(ctx, "samples.wav", bytes.NewReader(wavBytes), opts)
		}})
	}

	attempts = append(attempts, attempt{name: "cpu", run: func(ctx context.Context) (*Response, error) {
		cpuOpts := opts
		cpuOpts.Debug = true
		resp, err := e.cpuWhisper.TranscribeFile(ctx, req.FilePath, cpuOpts)
		if err == nil {
			// The model stays on CPU once the accelerated path has failed.
			e.device = "cpu"
			e.whisper = e.cpuWhisper
		}
		return resp, err
	}})

	var errs []error
	for _, a := range attempts {
		resp, err := a.run(ctx)
		if err != nil {
			slog.Warn("transcription attempt failed", "attempt", a.name, "error", err)
			errs = append(errs, fmt.Errorf("%s attempt: %w", a.name, err))
			continue
		}
		return e.result(req, resp), nil
	}

	return nil, &ExhaustedError{Attempts: errs}
}

func (e *Engine) result(req Request, resp *Response) *Result {
	lang := req.Language
	if lang == "" {
		lang = resp.Language
	}
	if lang == "" {
		lang = "auto-detected"
	}

	res := &Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: lang,
		Model:    "whisper-" + e.modelSize,
		Device:   e.device,
		Duration: resp.Duration,
	}

	if len(resp.Segments) > 0 {
		var sum float64
		for _, s := range resp.Segments {
			sum += s.AvgLogprob
		}
		conf := sum / float64(len(resp.Segments))
		res.Confidence = &conf
	}

	return res
}
