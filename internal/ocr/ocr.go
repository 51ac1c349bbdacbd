package ocr

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit
	TessdataDir   string
	TempDir       string // parent of per-call raster dirs; empty uses os.TempDir()

	PSM int // 4 suits column-aligned statement tables; 0 leaves tesseract's default
}

// Extractor wraps the poppler and tesseract command line tools.
type Extractor struct {
	cfg      Config
	runner   Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger
}

// NewExtractor fills config defaults. A nil runner executes real binaries.
func NewExtractor(cfg Config, runner Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &Extractor{cfg: cfg, runner: runner, lookPath: exec.LookPath, logger: logger}
}

// Name identifies the direct engine in logs.
func (e *Extractor) Name() string { return "pdftotext" }

// HasDirect reports whether pdftotext is installed.
func (e *Extractor) HasDirect() bool {
	return e.installed(e.cfg.Pdftotext)
}

// HasOCR reports whether both pdftoppm and tesseract are installed.
func (e *Extractor) HasOCR() bool {
	return e.installed(e.cfg.Pdftoppm) && e.installed(e.cfg.Tesseract)
}

func (e *Extractor) installed(bin string) bool {
	if _, err := e.lookPath(bin); err != nil {
		e.logger.Debug("ocr.binary.missing", "binary", bin, "error", err)
		return false
	}
	return true
}

// TesseractVersion returns the first line of `tesseract --version`, or "unknown".
func (e *Extractor) TesseractVersion(ctx context.Context) string {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, "--version")
	if err != nil {
		return "unknown"
	}
	// older releases print the banner on stderr
	s := strings.TrimSpace(string(out))
	if s == "" {
		s = strings.TrimSpace(string(errb))
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}
