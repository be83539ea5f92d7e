package services

import (
	"context"
	"fmt"
)

// GenerationInput carries one prompt invocation to an AI text backend
type GenerationInput struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// GenerationOutput is the raw text produced by a backend
type GenerationOutput struct {
	Text         string
	Model        string
	FinishReason string
}

// TextGenerator is the contract every AI text backend implements.
// A failed call returns an error; callers decide whether to retry.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, in GenerationInput) (*GenerationOutput, error)
}

// GeneratorRegistry selects a TextGenerator by backend name
type GeneratorRegistry struct {
	backends map[string]TextGenerator
}

// NewGeneratorRegistry creates a registry from the given backends
func NewGeneratorRegistry(backends ...TextGenerator) *GeneratorRegistry {
	m := make(map[string]TextGenerator, len(backends))
	for _, b := range backends {
		m[b.Name()] = b
	}
	return &GeneratorRegistry{backends: m}
}

// Get returns the backend registered under name
func (r *GeneratorRegistry) Get(name string) (TextGenerator, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown generation backend: %s", name)
	}
	return b, nil
}

// Names lists registered backend names
func (r *GeneratorRegistry) Names() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}
