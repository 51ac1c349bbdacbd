package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/llm"
)

// parse prompts the model with text and returns its validated answer. On failure
// the second return value is the result to hand back.
func (p *Processor) parse(ctx context.Context, text string, log *slog.Logger) (entity.Statement, *PipelineResult) {
	digest := Digest(text)
	if cached := p.cached(ctx, digest, log); cached != nil {
		return cached, nil
	}

	fitted, cut := llm.FitText(text, p.invoker.MaxInputChars())
	if cut {
		log.Warn("pipeline.prompt.truncated", "text_bytes", len(text), "kept_bytes", len(fitted))
	}
	prompt := llm.BuildStatementPrompt(fitted)

	start := p.now()
	resp, err := p.invoker.Infer(ctx, prompt)
	p.metrics.observeStage("infer", p.now().Sub(start))
	if err != nil {
		kind := common.KindOf(err, common.KindInferenceFailed)
		msg := "AI model inference failed"
		if kind == common.KindModelNotLoaded {
			msg = "AI model not loaded"
		}
		log.Error("pipeline.infer.failed", "code", kind, "error", err)
		return nil, fail(kind, msg, nil)
	}

	start = p.now()
	defer func() { p.metrics.observeStage("recover", p.now().Sub(start)) }()

	raw, err := llm.ExtractJSONObject(resp)
	if err != nil {
		log.Warn("pipeline.recover.no_json", "response_bytes", len(resp))
		return nil, fail(common.KindNoJSONFound, "No valid JSON found in AI response", nil)
	}

	var obj entity.Statement
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		log.Warn("pipeline.recover.invalid_json", "error", err, "json_bytes", len(raw))
		return nil, fail(common.KindInvalidJSONFormat, fmt.Sprintf("Invalid JSON format in AI response: %v", err), &Diagnostic{
			RawResponse:   resp,
			ExtractedJSON: raw,
			ParseError:    err.Error(),
		})
	}

	if changed := llm.NormalizeStatement(obj); len(changed) > 0 {
		log.Debug("pipeline.normalize.coerced", "fields", changed)
	}

	report := p.validator.Validate(obj)
	if !report.OK {
		log.Warn("pipeline.validate.failed", "errors", report.Errors)
		return nil, fail(common.KindInvalidAIOutput, "AI model returned invalid data structure", &Diagnostic{
			RawResponse:      resp,
			ExtractedJSON:    raw,
			ValidationErrors: report.Errors,
		})
	}
	if len(report.Warnings) > 0 {
		log.Warn("pipeline.validate.warnings", "count", len(report.Warnings), "warnings", report.Warnings)
	}

	p.store(ctx, digest, obj, log)
	return obj, nil
}

func (p *Processor) cached(ctx context.Context, digest string, log *slog.Logger) entity.Statement {
	if p.cache == nil {
		return nil
	}
	res, err := p.cache.Get(ctx, digest)
	if err != nil {
		log.Warn("pipeline.cache.get_failed", "error", err)
		return nil
	}
	if res != nil {
		p.metrics.cacheHit()
		log.Info("pipeline.cache.hit", "digest", digest[:12])
	}
	return res
}

func (p *Processor) store(ctx context.Context, digest string, res entity.Statement, log *slog.Logger) {
	if p.cache == nil {
		return
	}
	if err := p.cache.Set(ctx, digest, res); err != nil {
		log.Warn("pipeline.cache.set_failed", "error", err)
	}
}

func jsonBytes(v any) ([]byte, error) {
	return json.Marshal(v)
}

func fail(kind common.ErrorKind, msg string, data any) *PipelineResult {
	r := failure(kind, msg, data)
	return &r
}
