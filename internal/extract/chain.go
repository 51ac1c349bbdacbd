package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Chain tries each direct engine in order and keeps the first one that yields text.
type Chain struct {
	engines []DirectExtractor
	logger  *slog.Logger
}

func NewChain(logger *slog.Logger, engines ...DirectExtractor) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{engines: engines, logger: logger}
}

func (c *Chain) Name() string {
	names := make([]string, 0, len(c.engines))
	for _, e := range c.engines {
		names = append(names, e.Name())
	}
	return strings.Join(names, ",")
}

// Engines lists the engine names in trial order.
func (c *Chain) Engines() []string {
	if c.Name() == "" {
		return nil
	}
	return strings.Split(c.Name(), ",")
}

// ExtractPages returns the first non-blank page set. Blank results from every engine
// are returned as-is; an error is returned only when every engine failed.
func (c *Chain) ExtractPages(ctx context.Context, path string) ([]string, error) {
	var (
		errs  []error
		blank []string
	)
	for _, e := range c.engines {
		pages, err := e.ExtractPages(ctx, path)
		if err != nil {
			c.logger.Warn("extract.direct.engine_failed", "engine", e.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		if joinPages(pages) != "" {
			c.logger.Debug("extract.direct.engine_ok", "engine", e.Name(), "pages", len(pages))
			return pages, nil
		}
		c.logger.Debug("extract.direct.engine_empty", "engine", e.Name(), "pages", len(pages))
		blank = pages
		if blank == nil {
			blank = []string{}
		}
	}
	if blank != nil {
		return blank, nil
	}
	return nil, errors.Join(errs...)
}

func joinPages(pages []string) string {
	return strings.TrimSpace(strings.Join(pages, "\n"))
}
