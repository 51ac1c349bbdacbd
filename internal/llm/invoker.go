package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-parser/internal/common"
)

// ErrModelNotLoaded is returned by Infer until Load has succeeded.
var ErrModelNotLoaded = common.NewAppError(common.KindModelNotLoaded, "AI model not loaded", nil)

type InvokerConfig struct {
	MaxInputChars int // prompt bytes passed to the backend; 0 = unbounded
	MaxNewTokens  int // default 2048
	Temperature   float32
	Serialize     bool // admit one generation at a time
}

// Invoker owns the shared generator. Load it once at startup; Infer is safe for
// concurrent use.
type Invoker struct {
	gen    Generator
	cfg    InvokerConfig
	loaded atomic.Bool
	mu     sync.Mutex
	logger *slog.Logger
}

func NewInvoker(gen Generator, cfg InvokerConfig, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = 2048
	}
	return &Invoker{gen: gen, cfg: cfg, logger: logger}
}

// Load initializes the backend. A failed load leaves the invoker unloaded; callers
// may keep serving and report MODEL_NOT_LOADED.
func (i *Invoker) Load(ctx context.Context) error {
	if i.gen == nil {
		return errors.New("no generator configured")
	}
	start := time.Now()
	if err := i.gen.Load(ctx); err != nil {
		i.logger.Error("llm.load.failed", "model", i.gen.Model(), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return err
	}
	i.loaded.Store(true)
	i.logger.Info("llm.load.ok", "model", i.gen.Model(), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

func (i *Invoker) Loaded() bool { return i.loaded.Load() }

func (i *Invoker) ModelName() string {
	if i.gen == nil {
		return ""
	}
	return i.gen.Model()
}

// MaxInputChars is the prompt budget callers should fit text into.
func (i *Invoker) MaxInputChars() int { return i.cfg.MaxInputChars }

// Infer runs one generation. Prompts over the input bound are cut at the end.
func (i *Invoker) Infer(ctx context.Context, prompt string) (string, error) {
	if !i.Loaded() {
		return "", ErrModelNotLoaded
	}
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.NewString()
	}

	if max := i.cfg.MaxInputChars; max > 0 && len(prompt) > max {
		i.logger.Warn("llm.infer.prompt_truncated", "req_id", rid, "prompt_len", len(prompt), "max", max)
		prompt = truncateUTF8(prompt, max)
	}

	if i.cfg.Serialize {
		i.mu.Lock()
		defer i.mu.Unlock()
	}

	start := time.Now()
	i.logger.Info("llm.infer.start", "req_id", rid, "model", i.gen.Model(),
		"prompt_len", len(prompt), "max_new_tokens", i.cfg.MaxNewTokens)

	out, err := i.gen.Generate(ctx, prompt, GenerateOptions{
		MaxNewTokens: i.cfg.MaxNewTokens,
		Temperature:  i.cfg.Temperature,
	})
	if err != nil {
		i.logger.Error("llm.infer.failed", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", common.NewAppError(common.KindInferenceFailed, "generation failed", err)
	}

	i.logger.Info("llm.infer.ok", "req_id", rid, "response_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
