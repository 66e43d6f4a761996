package imagegen

import (
	"context"
	"fmt"
)

// Registry routes generation requests to a named backend. A failed backend
// is never retried and never falls through to another one.
type Registry struct {
	generators  map[string]Generator
	defaultName string
}

func NewRegistry(defaultName string) *Registry {
	return &Registry{
		generators:  make(map[string]Generator),
		defaultName: defaultName,
	}
}

func (r *Registry) Register(g Generator) {
	r.generators[g.Name()] = g
}

func (r *Registry) Generator(name string) (Generator, error) {
	if name == "" {
		name = r.defaultName
	}
	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("image provider %q not configured", name)
	}
	return g, nil
}

func (r *Registry) Generate(ctx context.Context, provider string, req Request) (*Image, error) {
	g, err := r.Generator(provider)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, req)
}
