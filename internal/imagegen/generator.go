// Package imagegen generates images from prompts through swappable remote
// backends.
package imagegen

import (
	"context"
	"fmt"
)

// Generator is one image generation backend.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Image, error)
	Name() string
}

// Request holds the parameters common to every backend.
type Request struct {
	Prompt     string `json:"prompt"`
	NumResults int    `json:"num_results,omitempty"`
}

// Image is one generated image.
type Image struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
}

// GenerationError is a backend response the client could not turn into an
// image: a non-2xx status, or a payload with no recognizable URL shape.
type GenerationError struct {
	Provider string
	Status   int
	Reason   string
}

func (e *GenerationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s generation failed (status %d): %s", e.Provider, e.Status, e.Reason)
	}
	return fmt.Sprintf("%s generation failed: %s", e.Provider, e.Reason)
}
