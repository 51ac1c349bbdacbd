package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// OCRPages rasterizes every page with pdftoppm and recognizes each image with tesseract.
// Page images live in a private dir under Config.TempDir that is removed before returning.
func (e *Extractor) OCRPages(ctx context.Context, path string) ([]string, error) {
	tmpDir, err := os.MkdirTemp(e.cfg.TempDir, "sp-pp-*")
	if err != nil {
		return nil, fmt.Errorf("create raster dir: %w", err)
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("ocr.cleanup.failed", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)

	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}

	// page-1.png, page-2.png ... zero-padded by pdftoppm when there are 10+ pages
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	pages := make([]string, 0, len(matches))
	for i, img := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		txt, err := e.tesseractOCR(ctx, img)
		if err != nil {
			e.logger.Warn("ocr.page.failed", "page", i+1, "error", err)
			pages = append(pages, "")
			continue
		}
		e.logger.Debug("ocr.page.ok", "page", i+1, "chars", len(txt))
		pages = append(pages, txt)
	}
	return pages, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, img string) (string, error) {
	args := []string{img, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return Normalize(string(out)), nil
}
