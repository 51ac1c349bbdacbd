package extract

import (
	"log/slog"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/ocr"
	"github.com/joseph-ayodele/statement-parser/internal/pdftext"
)

// NewFromTools assembles an Acquirer from whatever tooling is installed. engines orders
// the direct extractors (native, pdftotext); missing binaries are skipped and a nil
// capability is passed when nothing of that kind remains.
func NewFromTools(tools *ocr.Extractor, engines []string, logger *slog.Logger, opts ...Option) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	var direct []DirectExtractor
	for _, name := range engines {
		switch name {
		case constants.EngineNative:
			direct = append(direct, pdftext.NewExtractor(0, logger))
		case constants.EnginePdftotext:
			if tools != nil && tools.HasDirect() {
				direct = append(direct, tools)
			} else {
				logger.Warn("extract.engine.unavailable", "engine", name)
			}
		default:
			logger.Warn("extract.engine.unknown", "engine", name)
		}
	}

	var d DirectExtractor
	if len(direct) > 0 {
		d = NewChain(logger, direct...)
	}
	var o OCRExtractor
	if tools != nil && tools.HasOCR() {
		o = tools
	} else {
		logger.Warn("extract.ocr.unavailable", "hint", "install poppler-utils and tesseract-ocr")
	}
	return NewAcquirer(d, o, logger, opts...)
}
