package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/llm"
)

// Acquirer turns a file into text. *extract.Acquirer implements it.
type Acquirer interface {
	AcquireBytes(ctx context.Context, data []byte, filename string, forceOCR bool) entity.ExtractionOutcome
	AcquirePath(ctx context.Context, path string, forceOCR bool) entity.ExtractionOutcome
}

// Inferencer is the shared model. *llm.Invoker implements it.
type Inferencer interface {
	Loaded() bool
	MaxInputChars() int
	Infer(ctx context.Context, prompt string) (string, error)
}

// OutputValidator checks a decoded model answer. *llm.Validator implements it.
type OutputValidator interface {
	Validate(obj map[string]any) llm.ValidationReport
}

// ResultCache stores validated results by text digest. Get returns nil, nil on a miss.
type ResultCache interface {
	Get(ctx context.Context, digest string) (entity.Statement, error)
	Set(ctx context.Context, digest string, res entity.Statement) error
}

// JobStore records one audit row per processed statement.
type JobStore interface {
	Start(ctx context.Context, job entity.ExtractJob) (*entity.ExtractJob, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, method string, processingMS int64, result []byte) error
	FinishFailure(ctx context.Context, id uuid.UUID, method, code, message string, processingMS int64) error
}

type Option func(*Processor)

func WithCache(c ResultCache) Option { return func(p *Processor) { p.cache = c } }
func WithJobStore(s JobStore) Option { return func(p *Processor) { p.jobs = s } }
func WithMetrics(m *Metrics) Option { return func(p *Processor) { p.metrics = m } }
func WithClock(now func() time.Time) Option { return func(p *Processor) { p.now = now } }

// Processor runs text acquisition, prompting, inference and recovery for one
// statement at a time. It is safe for concurrent use; the invoker decides how many
// generations actually run in parallel.
type Processor struct {
	acquirer  Acquirer
	invoker   Inferencer
	validator OutputValidator
	cache     ResultCache
	jobs      JobStore
	metrics   *Metrics
	now       func() time.Time
	logger    *slog.Logger
}

// NewProcessor wires the pipeline. A nil validator means structural checks only; a
// nil acquirer makes every document fail with NO_EXTRACTION_LIBRARIES.
func NewProcessor(acq Acquirer, inv Inferencer, val OutputValidator, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if val == nil {
		v, _ := llm.NewValidator(constants.StrictnessStructural, logger)
		val = v
	}
	p := &Processor{
		acquirer:  acq,
		invoker:   inv,
		validator: val,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process dispatches on the document source.
func (p *Processor) Process(ctx context.Context, doc entity.Document) PipelineResult {
	if doc.IsFile() {
		return p.ProcessDocument(ctx, doc)
	}
	return p.ProcessText(ctx, doc.RawText, doc.CustomerID)
}

// ProcessText parses statement text that is already available.
func (p *Processor) ProcessText(ctx context.Context, text, customerID string) PipelineResult {
	return p.run(ctx, entity.Document{RawText: text, CustomerID: customerID})
}

// ProcessDocument acquires text from doc.Bytes or doc.Path and parses it.
func (p *Processor) ProcessDocument(ctx context.Context, doc entity.Document) PipelineResult {
	return p.run(ctx, doc)
}

func (p *Processor) run(ctx context.Context, doc entity.Document) (res PipelineResult) {
	start := p.now()
	log := common.LoggerFromContext(ctx, p.logger).With(
		"req_id", common.RequestIDFromContext(ctx),
		"customer_id", doc.CustomerID,
	)
	if doc.Filename != "" {
		log = log.With("filename", doc.Filename)
	}

	source := constants.JobSourceText
	if doc.IsFile() {
		source = constants.JobSourceFile
	}
	jobID := p.startJob(ctx, doc, source, log)
	method := constants.MethodNone

	defer func() {
		if r := recover(); r != nil {
			log.Error("pipeline.panic", "panic", r, "stack", string(debug.Stack()))
			res = failure(common.KindInternal, fmt.Sprintf("Internal error: %v", r), nil)
		}
		elapsed := p.now().Sub(start)
		p.metrics.observeResult(res, elapsed)
		res.JobID = p.finishJob(ctx, jobID, method, res, elapsed, log)
		log.Info("pipeline.process.done",
			"success", res.Success,
			"code", res.Code(),
			"method", method,
			"elapsed_ms", elapsed.Milliseconds(),
		)
	}()

	log.Info("pipeline.process.start", "source", source, "force_ocr", doc.ForceOCR)

	if p.invoker == nil || !p.invoker.Loaded() {
		return failure(common.KindModelNotLoaded, "AI model not loaded", nil)
	}

	text := doc.RawText
	if doc.IsFile() {
		outcome := p.acquire(ctx, doc, log)
		method = outcome.Method
		if !outcome.Success {
			return failure(outcome.Error, outcome.Message, nil)
		}
		text = outcome.Text
	}
	if strings.TrimSpace(text) == "" {
		return failure(common.KindTextEmpty, "Empty text content provided", nil)
	}

	statement, failed := p.parse(ctx, text, log)
	if failed != nil {
		return *failed
	}

	elapsed := p.now().Sub(start)
	secs := math.Round(elapsed.Seconds()*100) / 100
	var extraction *string
	if doc.IsFile() {
		m := string(method)
		extraction = &m
	}

	return PipelineResult{
		Success: true,
		Message: fmt.Sprintf("Bank statement processed successfully in %.2f seconds", secs),
		Data:    statement.Stamp(float64(p.now().UnixNano())/1e9, secs, extraction),
	}
}

func (p *Processor) startJob(ctx context.Context, doc entity.Document, source constants.JobSource, log *slog.Logger) uuid.UUID {
	if p.jobs == nil {
		return uuid.Nil
	}
	job, err := p.jobs.Start(ctx, entity.ExtractJob{
		CustomerID: doc.CustomerID,
		Filename:   doc.Filename,
		Source:     source,
	})
	if err != nil {
		log.Warn("pipeline.job.start_failed", "error", err)
		return uuid.Nil
	}
	return job.ID
}

func (p *Processor) finishJob(ctx context.Context, id uuid.UUID, method constants.ExtractionMethod, res PipelineResult, elapsed time.Duration, log *slog.Logger) string {
	if p.jobs == nil || id == uuid.Nil {
		return ""
	}
	var err error
	if res.Success {
		var body []byte
		body, err = jsonBytes(res.Data)
		if err == nil {
			err = p.jobs.FinishSuccess(ctx, id, string(method), elapsed.Milliseconds(), body)
		}
	} else {
		err = p.jobs.FinishFailure(ctx, id, string(method), res.Code(), res.Message, elapsed.Milliseconds())
	}
	if err != nil {
		log.Warn("pipeline.job.finish_failed", "job_id", id, "error", err)
	}
	return id.String()
}

// Digest is the cache key for a statement text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
