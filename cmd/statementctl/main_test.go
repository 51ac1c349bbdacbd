package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-parser/internal/export"
)

const statementJSON = `{"bank_name":"First Bank","accounts":[{"account_number":"1234","transactions":[{"date":"2024-03-01","description":"Coffee","debit":4.5}]}]}`

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestReadStatement(t *testing.T) {
	bare, err := readStatement(writeTemp(t, "bare.json", statementJSON))
	require.NoError(t, err)
	assert.Equal(t, "First Bank", bare.BankName)

	wrapped, err := readStatement(writeTemp(t, "env.json", `{"success":true,"message":"ok","data":`+statementJSON+`}`))
	require.NoError(t, err)
	require.Len(t, wrapped.Accounts, 1)
	assert.Len(t, wrapped.Accounts[0].Transactions, 1)

	_, err = readStatement(writeTemp(t, "failed.json", `{"success":false,"message":"x","data":null,"error":"NO_JSON_FOUND"}`))
	assert.Error(t, err)
}

func TestWriteExport(t *testing.T) {
	stmt, err := readStatement(writeTemp(t, "bare.json", statementJSON))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "march.csv")
	require.NoError(t, writeExport(nil, stmt, out))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Coffee")

	assert.Error(t, writeExport(nil, stmt, filepath.Join(t.TempDir(), "march.json")))
}

func TestExtFormat(t *testing.T) {
	assert.Equal(t, export.FormatCSV, extFormat("a.CSV"))
	assert.Equal(t, export.FormatXLSX, extFormat("a.xlsx"))
	assert.Equal(t, export.FormatXLSX, extFormat("a"))
}

func TestReadStatement_Strict(t *testing.T) {
	strictExport = true
	defer func() { strictExport = false }()

	_, err := readStatement(writeTemp(t, "bare.json", statementJSON))
	assert.Error(t, err, "statement_period is required by the schema")

	full := `{"bank_name":"First Bank","statement_period":{"start_date":"2024-03-01","end_date":"2024-03-31"},"accounts":[]}`
	_, err = readStatement(writeTemp(t, "full.json", full))
	assert.NoError(t, err)
}
