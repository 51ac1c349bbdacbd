package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountMarshalsNullClosingBalance(t *testing.T) {
	opening := 100.0
	b, err := json.Marshal(Account{AccountNumber: "1", OpeningBalance: &opening, Transactions: []Transaction{}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"closing_balance":null`)
	assert.Contains(t, string(b), `"opening_balance":100`)
}

func TestStatementStampCopies(t *testing.T) {
	base := Statement{"bank_name": "B", "accounts": []any{}}
	method := "ocr"

	out := base.Stamp(1700000000.5, 1.25, &method)
	assert.Equal(t, "ocr", out["extraction_method"])
	assert.Equal(t, 1.25, out["processing_time_seconds"])
	assert.NotContains(t, base, "processed_at")

	out = base.Stamp(1, 0, nil)
	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"extraction_method":null`)
}

func TestStatementTypedIsLenient(t *testing.T) {
	var s Statement
	require.NoError(t, json.Unmarshal([]byte(`{
  "bank_name": 7,
  "statement_period": {"start_date": "2024-01-01", "end_date": null},
  "accounts": [
    "junk",
    {"account_number": 12345678, "currency": "USD", "opening_balance": "1,000.50", "closing_balance": "n/a",
     "transactions": [{"date": "2024-01-02", "description": "Coffee", "debit": 4.2, "credit": null, "note": "card"}, 3]}
  ],
  "processed_at": 1700000000.25,
  "extraction_method": "direct"
}`), &s))

	r := s.Typed()
	assert.Equal(t, "7", r.BankName)
	assert.Equal(t, "", r.StatementPeriod.EndDate)
	require.Len(t, r.Accounts, 1)
	acct := r.Accounts[0]
	assert.Equal(t, "12345678", acct.AccountNumber)
	require.NotNil(t, acct.OpeningBalance)
	assert.InDelta(t, 1000.50, *acct.OpeningBalance, 1e-9)
	assert.Nil(t, acct.ClosingBalance)
	require.Len(t, acct.Transactions, 1)
	require.NotNil(t, acct.Transactions[0].Note)
	assert.Equal(t, "card", *acct.Transactions[0].Note)
	assert.Nil(t, acct.Transactions[0].Credit)
	assert.Equal(t, 1, r.TransactionCount())
	require.NotNil(t, r.ExtractionMethod)
	assert.Equal(t, "direct", *r.ExtractionMethod)
}

func TestParseStatementRejectsNonObject(t *testing.T) {
	_, err := ParseStatement([]byte(`null`))
	assert.Error(t, err)
	_, err = ParseStatement([]byte(`[1,2]`))
	assert.Error(t, err)

	r, err := ParseStatement([]byte(`{"bank_name":"B"}`))
	require.NoError(t, err)
	assert.NotNil(t, r.Accounts)
}
