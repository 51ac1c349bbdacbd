package ocr

import (
	"context"
	"fmt"
	"strings"
)

// ExtractPages runs `pdftotext -layout` and splits the output into pages on form feeds.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	pages := strings.Split(string(out), "\f")
	// pdftotext terminates every page with \f, leaving one empty tail
	if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
		pages = pages[:n-1]
	}
	return pages, nil
}
