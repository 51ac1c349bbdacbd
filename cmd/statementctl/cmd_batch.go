package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-parser/internal/app"
	"github.com/joseph-ayodele/statement-parser/internal/async"
	"github.com/joseph-ayodele/statement-parser/internal/ingest"
)

var (
	batchExts   []string
	skipHidden  bool
	workers     int
	initialScan bool
	debounce    time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Parse every statement under a directory",
	Long: `batch walks a directory for .pdf and .txt statements, runs them through a
worker pool and prints one JSON line per file.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Parse statements as they land in watched directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWatch,
}

func init() {
	for _, c := range []*cobra.Command{batchCmd, watchCmd} {
		c.Flags().StringSliceVar(&batchExts, "ext", []string{"pdf", "txt"}, "file extensions to pick up")
		c.Flags().BoolVar(&skipHidden, "skip-hidden", true, "ignore dot files and directories")
		c.Flags().BoolVar(&forceOCR, "force-ocr", false, "skip direct extraction and OCR every page")
		c.Flags().StringVar(&customerID, "customer-id", "", "customer id recorded with each run")
		c.Flags().IntVar(&workers, "workers", 0, "worker count (default BATCH_WORKERS)")
	}
	watchCmd.Flags().BoolVar(&initialScan, "initial-scan", false, "process files already present at startup")
	watchCmd.Flags().DurationVar(&debounce, "debounce", 750*time.Millisecond, "coalesce events for the same file")
}

type lineSummary struct {
	File     string  `json:"file"`
	JobID    string  `json:"job_id,omitempty"`
	Success  bool    `json:"success"`
	Code     string  `json:"code"`
	Message  string  `json:"message"`
	Seconds  float64 `json:"seconds"`
	WorkerID int     `json:"worker_id"`
}

// newQueue builds a worker pool that prints one summary per finished job.
func newQueue(cmd *cobra.Command, rt *app.Runtime, logger *slog.Logger, failures *int) *async.ProcessorQueue {
	var mu sync.Mutex
	n := workers
	if n <= 0 {
		n = rt.Config.Batch.Workers
	}
	return async.NewProcessorQueue(rt.Processor, logger,
		async.WithWorkers(n),
		async.WithQueueSize(rt.Config.Batch.QueueSize),
		async.WithProcessTimeout(rt.Config.Batch.ProcessTimeout),
		async.WithResultHandler(func(r async.Result) {
			mu.Lock()
			defer mu.Unlock()
			if !r.Result.Success {
				*failures++
			}
			_ = printJSONLine(cmd, lineSummary{
				File:     r.Job.Name,
				JobID:    r.Result.JobID,
				Success:  r.Result.Success,
				Code:     r.Result.Code(),
				Message:  r.Result.Message,
				Seconds:  r.Elapsed.Seconds(),
				WorkerID: r.WorkerID,
			})
		}),
	)
}

func runBatch(cmd *cobra.Command, args []string) error {
	rt, logger, err := setup(cmd.Context(), runtimeOptions())
	if err != nil {
		return err
	}
	defer rt.Close()

	failures := 0
	q := newQueue(cmd, rt, logger, &failures)
	results, stats, walkErr := ingest.EnqueueDirectory(cmd.Context(), q, args[0], ingest.Options{
		IncludeExts: batchExts,
		SkipHidden:  skipHidden,
		ForceOCR:    forceOCR,
		CustomerID:  customerID,
		MaxFileSize: rt.Config.Server.MaxFileSize,
	})
	q.Shutdown(context.Background())

	for _, r := range results {
		if r.Err != "" {
			logger.Warn("batch.file.skipped", "path", r.Path, "error", r.Err)
		}
	}
	logger.Info("batch.done", "dir", args[0], "scanned", stats.Scanned, "matched", stats.Matched,
		"enqueued", stats.Enqueued, "failed_enqueue", stats.Failed, "failed_parse", failures)

	if walkErr != nil {
		return walkErr
	}
	if failures > 0 || stats.Failed > 0 {
		return fmt.Errorf("%d of %d statements failed", failures+int(stats.Failed), stats.Matched)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt, logger, err := setup(cmd.Context(), runtimeOptions())
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       args,
		IncludeExts: batchExts,
		InitialScan: initialScan,
		Debounce:    debounce,
	}, logger)
	if err != nil {
		return err
	}

	failures := 0
	q := newQueue(cmd, rt, logger, &failures)
	defer q.Shutdown(context.Background())

	opts := ingest.Options{ForceOCR: forceOCR, CustomerID: customerID, MaxFileSize: rt.Config.Server.MaxFileSize}
	logger.Info("watch.started", "roots", strings.Join(args, ","))
	for {
		select {
		case p, ok := <-paths:
			if !ok {
				return nil
			}
			if skipHidden && ingest.IsHidden(p) {
				continue
			}
			doc, err := ingest.DocumentFor(p, opts)
			if err != nil {
				logger.Warn("watch.file.skipped", "path", p, "error", err)
				continue
			}
			if err := q.Enqueue(ctx, async.Job{Name: p, Document: doc, SubmittedAt: time.Now()}); err != nil {
				logger.Warn("watch.enqueue_failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

func printJSONLine(cmd *cobra.Command, v lineSummary) error {
	return printJSON(cmd.OutOrStdout(), v)
}
