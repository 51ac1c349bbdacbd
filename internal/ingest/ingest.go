// Package ingest finds statement files on disk and turns them into pipeline documents.
package ingest

import (
	"context"

	"github.com/joseph-ayodele/statement-parser/internal/async"
)

// FileResult is the per-file outcome of a directory run.
type FileResult struct {
	Path string
	Err  string
}

// DirStats summarizes a directory run.
type DirStats struct {
	Scanned  uint32
	Matched  uint32
	Enqueued uint32
	Failed   uint32
}

// Options control which files a run picks up and how they are processed.
type Options struct {
	IncludeExts []string // default pdf, txt
	SkipHidden  bool
	ForceOCR    bool
	CustomerID  string
	MaxFileSize int64 // text files above this are rejected; default constants.MaxFileSizeDefault
}

// Enqueuer is the part of async.Queue a directory run needs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job async.Job) error
}
