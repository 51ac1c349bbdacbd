package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/statement-parser/internal/app"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/export"
	"github.com/joseph-ayodele/statement-parser/internal/llm"
)

var exportCmd = &cobra.Command{
	Use:   "export <job-id|result.json> <out.xlsx|out.csv>",
	Short: "Write a parsed statement to a spreadsheet",
	Long: `export renders a statement as XLSX or CSV, chosen by the output extension.
The source is either an extract_job id (requires DB_URL) or a JSON file holding
a statementctl result envelope or a bare statement object.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

var strictExport bool

func init() {
	exportCmd.Flags().BoolVar(&strictExport, "strict", false, "reject JSON files that do not match the full statement schema")
}

var dbhealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Check database connectivity and apply the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, _, err := setup(cmd.Context(), app.Options{WithDatabase: true})
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := rt.PingDatabase(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s reachable, schema applied\n", rt.DB.Driver)
		return nil
	},
}

func runExport(cmd *cobra.Command, args []string) error {
	src, out := args[0], args[1]

	if id, err := uuid.Parse(src); err == nil {
		rt, _, err := setup(cmd.Context(), app.Options{WithDatabase: true})
		if err != nil {
			return err
		}
		defer rt.Close()
		if rt.Exporter == nil {
			return fmt.Errorf("DB_URL is required to export job %s", id)
		}
		f, err := rt.Exporter.ExportJob(cmd.Context(), id, extFormat(out))
		if err != nil {
			return err
		}
		return os.WriteFile(out, f.Body, 0o644)
	}

	stmt, err := readStatement(src)
	if err != nil {
		return err
	}
	return writeExport(export.NewService(nil, nil), stmt, out)
}

// readStatement accepts either {"success":..,"data":{...}} or the statement itself.
func readStatement(path string) (*entity.StatementResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if envelope.Success != nil {
		if !*envelope.Success || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
			return nil, fmt.Errorf("%s holds a failed result", path)
		}
		b = envelope.Data
	}
	if strictExport {
		if err := llm.ValidateJSONAgainstSchema(llm.BuildStatementJSONSchema(), b); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return entity.ParseStatement(b)
}

func extFormat(out string) string {
	if strings.EqualFold(filepath.Ext(out), ".csv") {
		return export.FormatCSV
	}
	return export.FormatXLSX
}
