// Command statementctl runs the statement pipeline from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-parser/internal/app"
	"github.com/joseph-ayodele/statement-parser/internal/common"
)

var (
	persist  bool
	useCache bool
	quiet    bool
)

var rootCmd = &cobra.Command{
	Use:   "statementctl",
	Short: "Parse bank statements into structured JSON",
	Long: `statementctl extracts text from bank statement PDFs (directly or with OCR),
asks the configured model for a structured statement and prints the result.

Configuration comes from the same environment variables as statementd
(LLM_PROVIDER, LLM_BASE_URL, BASE_MODEL, DB_URL, REDIS_ADDRESS, ...).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&persist, "persist", false, "record runs in the extract_job table (DB_DRIVER/DB_URL)")
	rootCmd.PersistentFlags().BoolVar(&useCache, "cache", false, "use the redis result cache (REDIS_ADDRESS)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	rootCmd.AddCommand(textCmd, processCmd, batchCmd, watchCmd, exportCmd, dbhealthCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// setup loads config and builds the runtime for a subcommand. Logs go to stderr so
// stdout carries only results.
func setup(ctx context.Context, opts app.Options) (*app.Runtime, *slog.Logger, error) {
	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if quiet {
		level = "warn"
	}
	logger := newStderrLogger(level, cfg.LogFormat)
	slog.SetDefault(logger)

	rt, err := app.Build(ctx, cfg, opts, logger)
	if err != nil {
		return nil, nil, err
	}
	return rt, logger, nil
}

func newStderrLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func runtimeOptions() app.Options {
	return app.Options{WithDatabase: persist, WithCache: useCache}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
