package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/ocr"
)

// Acquirer turns a PDF into text: the embedded text layer first, OCR when that is empty.
// Either capability may be nil when its tooling is not installed.
type Acquirer struct {
	direct  DirectExtractor
	ocr     OCRExtractor
	tempDir string
	logger  *slog.Logger
}

type Option func(*Acquirer)

// WithTempDir places the per-call upload copy in dir instead of os.TempDir().
func WithTempDir(dir string) Option {
	return func(a *Acquirer) { a.tempDir = dir }
}

func NewAcquirer(direct DirectExtractor, ocrx OCRExtractor, logger *slog.Logger, opts ...Option) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Acquirer{direct: direct, ocr: ocrx, logger: logger}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Available reports whether at least one acquisition capability is present.
func (a *Acquirer) Available() bool {
	return a.direct != nil || a.ocr != nil
}

// Info describes the installed capabilities. versioner may be nil.
func (a *Acquirer) Info(ctx context.Context, versioner interface{ TesseractVersion(context.Context) string }) ServiceInfo {
	info := ServiceInfo{
		ServiceAvailable: a.Available(),
		DirectAvailable:  a.direct != nil,
		OCRAvailable:     a.ocr != nil,
		PreferredMethod:  string(constants.MethodNone),
	}
	switch {
	case a.direct != nil:
		info.PreferredMethod = string(constants.MethodDirect)
	case a.ocr != nil:
		info.PreferredMethod = string(constants.MethodOCR)
	}
	if c, ok := a.direct.(*Chain); ok {
		info.DirectEngines = c.Engines()
	} else if a.direct != nil {
		info.DirectEngines = []string{a.direct.Name()}
	}
	if a.ocr != nil && versioner != nil {
		info.TesseractVersion = versioner.TesseractVersion(ctx)
	}
	return info
}

// AcquirePath extracts text from a PDF already on disk.
func (a *Acquirer) AcquirePath(ctx context.Context, path string, forceOCR bool) entity.ExtractionOutcome {
	start := time.Now()
	if !a.Available() {
		return a.fail(start, constants.MethodNone, common.KindNoExtractionLibraries,
			"No PDF text extraction libraries available")
	}
	st, err := os.Stat(path)
	if err != nil || st.IsDir() {
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return a.fail(start, constants.MethodNone, common.KindFileNotFound,
				fmt.Sprintf("File not found: %s", path))
		}
		return a.fail(start, constants.MethodNone, common.KindFileNotFound,
			fmt.Sprintf("Cannot read %s: %v", path, err))
	}
	return a.acquire(ctx, path, filepath.Base(path), forceOCR, start)
}

// AcquireBytes copies data to a private temp file for the duration of the call.
// The copy is removed on every return path.
func (a *Acquirer) AcquireBytes(ctx context.Context, data []byte, filename string, forceOCR bool) entity.ExtractionOutcome {
	start := time.Now()
	if !a.Available() {
		return a.fail(start, constants.MethodNone, common.KindNoExtractionLibraries,
			"No PDF text extraction libraries available")
	}

	tmp, err := os.CreateTemp(a.tempDir, "stmt-*.pdf")
	if err != nil {
		a.logger.Error("extract.tempfile.create_failed", "error", err)
		return a.fail(start, constants.MethodNone, common.KindExtractionFailed, "Failed to stage uploaded file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			a.logger.Warn("extract.tempfile.remove_failed", "path", tmpPath, "error", err)
		}
	}()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		a.logger.Error("extract.tempfile.write_failed", "path", tmpPath, "error", errors.Join(werr, cerr))
		return a.fail(start, constants.MethodNone, common.KindExtractionFailed, "Failed to stage uploaded file")
	}
	if filename == "" {
		filename = "upload.pdf"
	}
	return a.acquire(ctx, tmpPath, filename, forceOCR, start)
}

func (a *Acquirer) acquire(ctx context.Context, path, filename string, forceOCR bool, start time.Time) entity.ExtractionOutcome {
	a.logger.Info("extract.start", "filename", filename, "force_ocr", forceOCR,
		"direct", a.direct != nil, "ocr", a.ocr != nil)

	directRan := false
	if !forceOCR && a.direct != nil {
		pages, err := a.direct.ExtractPages(ctx, path)
		if err != nil {
			a.logger.Warn("extract.direct.failed", "filename", filename, "error", err)
		} else {
			directRan = true
			if text := joinPages(pages); text != "" {
				a.logger.Info("extract.direct.ok", "filename", filename, "pages", len(pages), "chars", len(text),
					"elapsed_ms", time.Since(start).Milliseconds())
				return entity.ExtractionOutcome{
					Method:   constants.MethodDirect,
					Text:     text,
					Success:  true,
					Message:  fmt.Sprintf("Successfully extracted text directly from %s", filename),
					Pages:    len(pages),
					Duration: time.Since(start),
				}
			}
			a.logger.Info("extract.direct.empty", "filename", filename, "pages", len(pages))
		}
	}

	if a.ocr == nil {
		if directRan {
			return a.fail(start, constants.MethodDirect, common.KindNoTextFound,
				fmt.Sprintf("No text found in %s and OCR not available", filename))
		}
		return a.fail(start, constants.MethodNone, common.KindOCRNotAvailable,
			fmt.Sprintf("Direct text extraction failed and OCR not available for %s", filename))
	}

	pages, err := a.ocr.OCRPages(ctx, path)
	if err != nil {
		a.logger.Error("extract.ocr.failed", "filename", filename, "error", err)
		return a.fail(start, constants.MethodOCR, common.KindNoTextFound,
			fmt.Sprintf("OCR extraction failed for %s: %v", filename, err))
	}
	text := joinPages(pages)
	if text == "" {
		return a.fail(start, constants.MethodOCR, common.KindNoTextFound,
			fmt.Sprintf("No text found in %s using OCR", filename))
	}

	warns := ocr.StatementSignals(text)
	a.logger.Info("extract.ocr.ok", "filename", filename, "pages", len(pages), "chars", len(text),
		"warnings", len(warns), "elapsed_ms", time.Since(start).Milliseconds())
	return entity.ExtractionOutcome{
		Method:   constants.MethodOCR,
		Text:     text,
		Success:  true,
		Message:  fmt.Sprintf("Successfully extracted text using OCR from %s", filename),
		Pages:    len(pages),
		Duration: time.Since(start),
		Warnings: warns,
	}
}

func (a *Acquirer) fail(start time.Time, method constants.ExtractionMethod, kind common.ErrorKind, msg string) entity.ExtractionOutcome {
	a.logger.Warn("extract.failed", "error_code", kind, "method", method, "message", msg)
	return entity.ExtractionOutcome{
		Method:   method,
		Success:  false,
		Error:    kind,
		Message:  strings.TrimSpace(msg),
		Duration: time.Since(start),
	}
}
