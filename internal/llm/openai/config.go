package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"
)

// Config for an OpenAI-compatible completions backend (vLLM, llama.cpp server, Ollama, OpenAI).
type Config struct {
	APIKey  string        // if empty, falls back to env LLM_API_KEY
	BaseURL string        // default http://localhost:8000/v1
	Model   string        // model id as listed by GET /models
	Timeout time.Duration // http client timeout
	Stop    []string      // default ["<|im_end|>"]
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("LLM_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "openchat/openchat_3.5"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Stop == nil {
		cfg.Stop = []string{"<|im_end|>"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger,
	}
}

func (c *Client) Model() string { return c.cfg.Model }
