// Package app assembles the pipeline from configuration for the statementd and
// statementctl binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/cache"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/export"
	"github.com/joseph-ayodele/statement-parser/internal/extract"
	"github.com/joseph-ayodele/statement-parser/internal/llm"
	"github.com/joseph-ayodele/statement-parser/internal/llm/gemini"
	"github.com/joseph-ayodele/statement-parser/internal/llm/openai"
	"github.com/joseph-ayodele/statement-parser/internal/ocr"
	"github.com/joseph-ayodele/statement-parser/internal/pipeline"
	"github.com/joseph-ayodele/statement-parser/internal/repository"
	"github.com/joseph-ayodele/statement-parser/internal/server"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(h)
}

// Runtime holds the long-lived pieces shared by the binaries.
type Runtime struct {
	Config    *common.Config
	Tools     *ocr.Extractor
	Acquirer  *extract.Acquirer
	Invoker   *llm.Invoker
	Processor *pipeline.Processor
	Registry  *prometheus.Registry
	DB        *repository.DB // nil when persistence is off
	Jobs      repository.ExtractJobRepository
	Exporter  *export.Service
	Cache     *cache.ResultCache // nil when REDIS_ADDRESS is empty

	logger *slog.Logger
}

// Options select the optional collaborators. The CLI skips persistence for
// one-off runs.
type Options struct {
	WithDatabase bool
	WithCache    bool
}

// Build wires every component. Model load failures are logged and leave the
// invoker unloaded; callers decide whether that is fatal.
func Build(ctx context.Context, cfg *common.Config, opts Options, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rt := &Runtime{Config: cfg, Registry: prometheus.NewRegistry(), logger: logger}
	rt.Registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	rt.Tools = ocr.NewExtractor(ocr.Config{
		TesseractLang: cfg.OCR.Lang,
		DPI:           cfg.OCR.DPI,
		PSM:           cfg.OCR.PSM,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
		TempDir:       cfg.OCR.TempDir,
	}, nil, logger)
	rt.Acquirer = extract.NewFromTools(rt.Tools, cfg.OCR.DirectEngines, logger, extract.WithTempDir(cfg.OCR.TempDir))
	if !rt.Acquirer.Available() {
		logger.Warn("app.extraction.unavailable", "direct_engines", cfg.OCR.DirectEngines)
	}

	gen, err := newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	rt.Invoker = llm.NewInvoker(gen, llm.InvokerConfig{
		MaxInputChars: cfg.LLM.MaxInputChars,
		MaxNewTokens:  cfg.LLM.MaxNewTokens,
		Temperature:   cfg.LLM.Temperature,
		Serialize:     cfg.LLM.Serialize,
	}, logger)
	if err := rt.Invoker.Load(ctx); err != nil {
		logger.Warn("app.model.unavailable", "model", gen.Model(), "error", err)
	}

	validator, err := llm.NewValidator(constants.ParseStrictness(cfg.Validation.Strictness), logger)
	if err != nil {
		return nil, fmt.Errorf("build validator: %w", err)
	}

	popts := []pipeline.Option{pipeline.WithMetrics(pipeline.NewMetrics(rt.Registry))}

	if opts.WithCache {
		rt.Cache = cache.New(cache.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		}, logger)
		if rt.Cache != nil {
			if err := rt.Cache.Ping(ctx); err != nil {
				logger.Warn("app.cache.unreachable", "address", cfg.Redis.Address, "error", err)
			}
			popts = append(popts, pipeline.WithCache(rt.Cache))
		}
	}

	if opts.WithDatabase && cfg.Database.URL != "" {
		db, err := repository.Open(ctx, repository.Config{
			Driver:          cfg.Database.Driver,
			DSN:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxConns),
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			DialTimeout:     cfg.Database.DialTimeout,
		}, logger)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("open database: %w", err)
		}
		rt.DB = db
		if err := repository.Migrate(ctx, db); err != nil {
			rt.Close()
			return nil, err
		}
		rt.Jobs = repository.NewExtractJobRepository(db, logger)
		rt.Exporter = export.NewService(rt.Jobs, logger)
		popts = append(popts, pipeline.WithJobStore(rt.Jobs))
	}

	rt.Processor = pipeline.NewProcessor(rt.Acquirer, rt.Invoker, validator, logger, popts...)
	return rt, nil
}

func newGenerator(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.Model, logger)
	default:
		return openai.NewClient(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}, logger), nil
	}
}

// ServerDeps exposes the runtime to the HTTP layer.
func (rt *Runtime) ServerDeps() server.Deps {
	deps := server.Deps{
		Processor: rt.Processor,
		Health: server.RuntimeHealth{
			Model:     rt.Invoker,
			Acquirer:  rt.Acquirer,
			Versioner: rt.Tools,
		},
		Gatherer:   rt.Registry,
		Registerer: rt.Registry,
	}
	if rt.Jobs != nil {
		deps.Jobs = rt.Jobs
		deps.Exporter = rt.Exporter
	}
	return deps
}

// Close releases the database and cache connections.
func (rt *Runtime) Close() {
	if rt.Cache != nil {
		if err := rt.Cache.Close(); err != nil {
			rt.logger.Warn("app.cache.close_failed", "error", err)
		}
	}
	if rt.DB != nil {
		repository.Close(rt.DB, rt.logger)
	}
}

// PingDatabase checks connectivity with a short timeout.
func (rt *Runtime) PingDatabase(ctx context.Context) error {
	if rt.DB == nil {
		return fmt.Errorf("database is not configured")
	}
	return repository.HealthCheck(ctx, rt.DB, 5*time.Second, rt.logger)
}
