// Package gemini adapts the Gemini API to llm.Generator.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/joseph-ayodele/statement-parser/internal/llm"
)

// models is the slice of *genai.Models the generator uses.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

type Generator struct {
	models models
	model  string
	log    *slog.Logger
}

func New(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGenerator(client.Models, model, logger), nil
}

func newGenerator(m models, model string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{models: m, model: model, log: logger}
}

func (g *Generator) Model() string { return g.model }

func (g *Generator) Load(ctx context.Context) error {
	m, err := g.models.Get(ctx, g.model, nil)
	if err != nil {
		return fmt.Errorf("get model %s: %w", g.model, err)
	}
	g.log.Info("llm.gemini.model_ready", "model", g.model, "display_name", m.DisplayName,
		"input_token_limit", m.InputTokenLimit)
	return nil
}

func (g *Generator) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	start := time.Now()
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(opts.Temperature),
		MaxOutputTokens:  int32(opts.MaxNewTokens),
		ResponseMIMEType: "application/json",
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		g.log.Error("llm.gemini.error", "model", g.model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from %s", g.model)
	}
	g.log.Info("llm.gemini.ok", "model", g.model, "bytes", len(text),
		"elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}
