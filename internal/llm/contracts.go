package llm

import "context"

// GenerateOptions bounds a single generation call.
type GenerateOptions struct {
	MaxNewTokens int
	Temperature  float32
}

// Generator is a text-in/text-out model backend. Generate must return only the newly
// generated text, never an echo of the prompt.
type Generator interface {
	// Load verifies the backend is reachable and the configured model is servable.
	Load(ctx context.Context) error
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	Model() string
}
