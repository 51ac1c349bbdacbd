package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/joseph-ayodele/statement-parser/internal/common"
)

// Runner executes the poppler and tesseract binaries. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

// Run executes name and captures both streams. A cancelled ctx is reported as the
// ctx error rather than the "signal: killed" exit status.
func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		err = ctxErr
	}
	log := r.logger.With("cmd", name, "req_id", common.RequestIDFromContext(ctx),
		"elapsed_ms", time.Since(start).Milliseconds())
	if err != nil {
		log.Error("ocr.exec.failed", "args", strings.Join(args, " "), "error", err,
			"stderr", truncate(stderr.String(), 8<<10))
	} else {
		log.Debug("ocr.exec.ok", "stdout_bytes", stdout.Len())
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
