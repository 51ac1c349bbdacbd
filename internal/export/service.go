package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/repository"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

var transactionHeaders = []string{
	"Account Number",
	"Account Name",
	"Currency",
	"Date",
	"Description",
	"Debit",
	"Credit",
	"Balance",
	"Note",
}

// Service renders stored statement results as spreadsheets.
type Service struct {
	jobs   repository.ExtractJobRepository
	logger *slog.Logger
}

func NewService(jobs repository.ExtractJobRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, logger: logger}
}

// File is a rendered export.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// ExportJob renders the result stored on a finished job.
func (s *Service) ExportJob(ctx context.Context, jobID uuid.UUID, format string) (*File, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != constants.JobStatusOK || len(job.ResultJSON) == 0 {
		return nil, common.NewAppError(common.KindInvalidInput,
			fmt.Sprintf("job %s has no statement to export (status %s)", jobID, job.Status), common.ErrInvalidInput)
	}
	res, err := entity.ParseStatement(job.ResultJSON)
	if err != nil {
		return nil, fmt.Errorf("stored result: %w", err)
	}
	return s.Render(res, format, "statement-"+jobID.String())
}

// Render produces the workbook or CSV for res. baseName has no extension.
func (s *Service) Render(res *entity.StatementResult, format, baseName string) (*File, error) {
	start := time.Now()
	var (
		body []byte
		ct   string
		err  error
	)
	switch strings.ToLower(format) {
	case FormatXLSX, "":
		format, ct = FormatXLSX, ContentTypeXLSX
		body, err = XLSX(res)
	case FormatCSV:
		ct = ContentTypeCSV
		body, err = CSV(res)
	default:
		return nil, common.NewAppError(common.KindInvalidInput, fmt.Sprintf("unsupported export format %q", format), common.ErrInvalidInput)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.ok",
		"format", format,
		"accounts", len(res.Accounts),
		"rows", res.TransactionCount(),
		"bytes", len(body),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return &File{Name: baseName + "." + strings.ToLower(format), ContentType: ct, Body: body}, nil
}

// XLSX returns a workbook with a Transactions sheet and a per-account Summary sheet.
func XLSX(res *entity.StatementResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, h := range transactionHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, a := range res.Accounts {
		for _, tx := range a.Transactions {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			write(1, a.AccountNumber)
			write(2, a.AccountName)
			write(3, a.Currency)
			write(4, tx.Date)
			write(5, truncate(tx.Description, 140))
			write(6, cellAmount(tx.Debit))
			write(7, cellAmount(tx.Credit))
			write(8, cellAmount(tx.Balance))
			if tx.Note != nil {
				write(9, *tx.Note)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 20) // account
	_ = f.SetColWidth(sheet, "C", "D", 12) // currency, date
	_ = f.SetColWidth(sheet, "E", "E", 48) // description
	_ = f.SetColWidth(sheet, "F", "H", 14) // amounts
	_ = f.SetColWidth(sheet, "I", "I", 32) // note

	if err := writeSummarySheet(f, res); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, res *entity.StatementResult) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	meta := [][]any{
		{"Bank", res.BankName},
		{"Period Start", res.StatementPeriod.StartDate},
		{"Period End", res.StatementPeriod.EndDate},
	}
	for i, m := range meta {
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &m)
	}

	header := []any{"Account Number", "Currency", "Transactions", "Opening", "Total Debits", "Total Credits", "Computed Closing", "Stated Closing", "Reconciled"}
	_ = f.SetSheetRow(sheet, "A5", &header)
	for i, s := range Summarize(res) {
		opening, _ := s.Opening.Float64()
		debits, _ := s.TotalDebits.Float64()
		credits, _ := s.TotalCredits.Float64()
		computed, _ := s.ComputedClosing.Float64()
		line := []any{s.AccountNumber, s.Currency, s.Transactions, opening, debits, credits, computed, "", ""}
		if s.StatedClosing != nil {
			stated, _ := s.StatedClosing.Float64()
			line[7] = stated
			line[8] = yesNo(*s.Reconciled)
		}
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", 6+i), &line)
	}
	_ = f.SetColWidth(sheet, "A", "A", 20)
	_ = f.SetColWidth(sheet, "B", "I", 16)
	return nil
}

// CSV returns one row per transaction with the same columns as the XLSX sheet.
func CSV(res *entity.StatementResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(transactionHeaders); err != nil {
		return nil, err
	}
	for _, a := range res.Accounts {
		for _, tx := range a.Transactions {
			note := ""
			if tx.Note != nil {
				note = *tx.Note
			}
			rec := []string{
				a.AccountNumber,
				a.AccountName,
				a.Currency,
				tx.Date,
				tx.Description,
				csvAmount(tx.Debit),
				csvAmount(tx.Credit),
				csvAmount(tx.Balance),
				note,
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	return buf.Bytes(), nil
}

func cellAmount(f *float64) any {
	if f == nil {
		return ""
	}
	return *f
}

func csvAmount(f *float64) string {
	if f == nil {
		return ""
	}
	return dec(f).StringFixed(2)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
