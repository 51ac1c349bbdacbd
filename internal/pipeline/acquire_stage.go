package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
)

// acquire runs text acquisition for a file document and records how it went.
func (p *Processor) acquire(ctx context.Context, doc entity.Document, log *slog.Logger) entity.ExtractionOutcome {
	if p.acquirer == nil {
		return entity.ExtractionOutcome{
			Method:  constants.MethodNone,
			Error:   common.KindNoExtractionLibraries,
			Message: "No PDF extraction libraries available",
		}
	}

	start := p.now()
	var out entity.ExtractionOutcome
	if len(doc.Bytes) > 0 {
		out = p.acquirer.AcquireBytes(ctx, doc.Bytes, doc.Filename, doc.ForceOCR)
	} else {
		out = p.acquirer.AcquirePath(ctx, doc.Path, doc.ForceOCR)
	}
	p.metrics.observeStage("acquire", p.now().Sub(start))

	if !out.Success {
		log.Warn("pipeline.acquire.failed", "method", out.Method, "code", out.Error, "message", out.Message)
		return out
	}
	log.Info("pipeline.acquire.ok",
		"method", out.Method,
		"pages", out.Pages,
		"text_bytes", len(out.Text),
		"warnings", len(out.Warnings),
	)
	for _, w := range out.Warnings {
		log.Warn("pipeline.acquire.warning", "warning", w)
	}
	return out
}
