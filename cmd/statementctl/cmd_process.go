package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/export"
	"github.com/joseph-ayodele/statement-parser/internal/pipeline"
)

var (
	customerID string
	forceOCR   bool
	exportOut  string
)

var textCmd = &cobra.Command{
	Use:   "text [file|-]",
	Short: "Parse statement text from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runText,
}

var processCmd = &cobra.Command{
	Use:   "process <statement.pdf>",
	Short: "Extract text from a PDF and parse it",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	for _, c := range []*cobra.Command{textCmd, processCmd} {
		c.Flags().StringVar(&customerID, "customer-id", "", "customer id recorded with the run")
		c.Flags().StringVarP(&exportOut, "out", "o", "", "also write the statement to this .xlsx or .csv file")
	}
	processCmd.Flags().BoolVar(&forceOCR, "force-ocr", false, "skip direct extraction and OCR every page")
}

func runText(cmd *cobra.Command, args []string) error {
	var (
		b   []byte
		err error
	)
	if len(args) == 0 || args[0] == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("read statement text: %w", err)
	}

	rt, _, err := setup(cmd.Context(), runtimeOptions())
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.Processor.ProcessText(cmd.Context(), string(b), customerID)
	return finish(cmd, rt.Exporter, res)
}

func runProcess(cmd *cobra.Command, args []string) error {
	rt, _, err := setup(cmd.Context(), runtimeOptions())
	if err != nil {
		return err
	}
	defer rt.Close()

	res := rt.Processor.ProcessDocument(cmd.Context(), entity.Document{
		Path:       args[0],
		Filename:   filepath.Base(args[0]),
		ForceOCR:   forceOCR,
		CustomerID: customerID,
	})
	return finish(cmd, rt.Exporter, res)
}

// finish prints the envelope and optionally writes the export. A failed pipeline
// result makes the command exit non-zero.
func finish(cmd *cobra.Command, exp *export.Service, res pipeline.PipelineResult) error {
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if res.JobID != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "job id: %s\n", res.JobID)
	}
	if !res.Success {
		return fmt.Errorf("%s: %s", res.Code(), res.Message)
	}
	if exportOut == "" {
		return nil
	}
	stmt, ok := res.Data.(entity.Statement)
	if !ok {
		return fmt.Errorf("unexpected result payload %T", res.Data)
	}
	return writeExport(exp, stmt.Typed(), exportOut)
}

func writeExport(exp *export.Service, stmt *entity.StatementResult, out string) error {
	if exp == nil {
		exp = export.NewService(nil, nil)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
	f, err := exp.Render(stmt, format, strings.TrimSuffix(filepath.Base(out), filepath.Ext(out)))
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, f.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
