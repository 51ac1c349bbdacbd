// Package pdftext reads the embedded text layer of a PDF in-process.
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// DefaultMinQuality is the share of plain readable characters a page set must reach
// before it is trusted. Identity-encoded fonts decode to glyph soup below this.
const DefaultMinQuality = 0.6

type Extractor struct {
	minQuality float64
	logger     *slog.Logger
}

func NewExtractor(minQuality float64, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if minQuality <= 0 || minQuality > 1 {
		minQuality = DefaultMinQuality
	}
	return &Extractor{minQuality: minQuality, logger: logger}
}

func (e *Extractor) Name() string { return "native" }

// ExtractPages returns the text of each page, rows joined by newlines. A document whose
// decoded text is mostly unreadable yields blank pages so the caller moves on.
func (e *Extractor) ExtractPages(ctx context.Context, path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	if n == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, perr := pageByRow(page)
		if perr != nil || strings.TrimSpace(txt) == "" {
			txt, perr = page.GetPlainText(nil)
		}
		if perr != nil {
			e.logger.Warn("pdftext.page.failed", "page", i, "error", perr)
			txt = ""
		}
		pages = append(pages, txt)
	}

	if q := Quality(pages); q < e.minQuality {
		e.logger.Info("pdftext.low_quality", "path", path, "quality", q, "pages", n)
		return make([]string, n), nil
	}
	return pages, nil
}

func pageByRow(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		parts := make([]string, 0, len(row.Content))
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Quality returns the ratio of readable characters to all non-space characters.
// Letters, digits, marks, punctuation and symbols of any script are readable;
// replacement characters, private-use runes and control codes are glyph soup.
// Empty input scores 1.
func Quality(pages []string) float64 {
	total, readable := 0, 0
	for _, p := range pages {
		for _, r := range p {
			if unicode.IsSpace(r) {
				continue
			}
			total++
			if readableRune(r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 1
	}
	return float64(readable) / float64(total)
}

func readableRune(r rune) bool {
	if r == utf8.RuneError || unicode.Is(unicode.Co, r) || unicode.IsControl(r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
