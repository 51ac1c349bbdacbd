package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/statement-parser/internal/llm"
)

// Load lists the backend's models and checks the configured one is served.
func (c *Client) Load(ctx context.Context) error {
	raw, status, err := llm.SendJSON(ctx, c.http, c.endpoint("/models"), nil, c.headers(), c.log)
	if err != nil {
		return fmt.Errorf("list models (status %d): %w", status, err)
	}
	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return fmt.Errorf("decode model list: %w", err)
	}
	ids := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		if m.ID == c.cfg.Model {
			c.log.Info("llm.openai.model_ready", "model", c.cfg.Model)
			return nil
		}
		ids = append(ids, m.ID)
	}
	return fmt.Errorf("model %q not served by %s (available: %s)", c.cfg.Model, c.cfg.BaseURL, strings.Join(ids, ", "))
}

// Generate calls /completions with echo disabled, so the returned text is only the
// continuation of prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts llm.GenerateOptions) (string, error) {
	start := time.Now()
	body := map[string]any{
		"model":       c.cfg.Model,
		"prompt":      prompt,
		"max_tokens":  opts.MaxNewTokens,
		"temperature": opts.Temperature,
		"echo":        false,
		"stop":        c.cfg.Stop,
	}

	raw, status, err := llm.SendJSON(ctx, c.http, c.endpoint("/completions"), body, c.headers(), c.log)
	if err != nil {
		c.log.Error("llm.openai.http_error", "status", status, "error", err, "body", truncate(string(raw), 512),
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("completions (status %d): %w", status, err)
	}

	var cr struct {
		Choices []struct {
			Text         string `json:"text"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(raw, &cr); err != nil {
		c.log.Error("llm.openai.decode_error", "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode completions response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("no choices in completions response")
	}

	ch := cr.Choices[0]
	if ch.FinishReason == "length" {
		c.log.Warn("llm.openai.hit_max_tokens", "max_tokens", opts.MaxNewTokens)
	}
	c.log.Info("llm.openai.ok",
		"model", c.cfg.Model,
		"prompt_tokens", cr.Usage.PromptTokens,
		"completion_tokens", cr.Usage.CompletionTokens,
		"finish_reason", ch.FinishReason,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return ch.Text, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) headers() map[string]string {
	if c.cfg.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
