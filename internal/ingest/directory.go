package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/async"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
)

// Scan walks root and returns the statement files it would process, in walk order.
func Scan(root string, opts Options) ([]string, DirStats, error) {
	var files []string
	stats, err := walk(root, opts, func(path string) error {
		files = append(files, path)
		return nil
	})
	return files, stats, err
}

// EnqueueDirectory walks root, filters by extension, skips hidden entries if requested,
// and enqueues one job per matching file. Per-file failures are recorded and the
// walk continues.
func EnqueueDirectory(ctx context.Context, q Enqueuer, root string, opts Options) ([]FileResult, DirStats, error) {
	var results []FileResult
	stats, err := walk(root, opts, func(path string) error {
		doc, err := DocumentFor(path, opts)
		if err == nil {
			err = q.Enqueue(ctx, async.Job{Name: path, Document: doc})
		}
		results = append(results, fileResult(path, err))
		return err
	})
	return results, stats, err
}

// DocumentFor builds the pipeline input for one file. Text files are read into
// RawText; PDFs are left on disk for acquisition.
func DocumentFor(path string, opts Options) (entity.Document, error) {
	doc := entity.Document{
		Filename:   filepath.Base(path),
		ForceOCR:   opts.ForceOCR,
		CustomerID: opts.CustomerID,
	}
	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.PDF:
		doc.Path = path
		return doc, nil
	case constants.TXT:
		limit := opts.MaxFileSize
		if limit <= 0 {
			limit = constants.MaxFileSizeDefault
		}
		info, err := os.Stat(path)
		if err != nil {
			return doc, err
		}
		if info.Size() > limit {
			return doc, fmt.Errorf("%s is %d bytes, limit is %d", path, info.Size(), limit)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return doc, err
		}
		doc.RawText = string(b)
		return doc, nil
	default:
		return doc, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

func walk(root string, opts Options, visit func(path string) error) (DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return stats, errors.New("root path is required")
	}
	exts := extSet(opts.IncludeExts)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			return nil // continue walking
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed(path, exts) {
			return nil
		}
		stats.Matched++

		if err := visit(path); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, async.ErrQueueClosed) {
				return err
			}
			stats.Failed++
			return nil
		}
		stats.Enqueued++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk: %w", err)
	}
	return stats, nil
}

func fileResult(path string, err error) FileResult {
	if err != nil {
		return FileResult{Path: path, Err: err.Error()}
	}
	return FileResult{Path: path}
}
