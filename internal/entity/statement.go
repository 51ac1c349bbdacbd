package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Statement is a model answer that passed validation, kept as decoded JSON so
// fields are returned exactly as the model produced them. Processing metadata
// (processed_at, processing_time_seconds, extraction_method) is stamped on top.
type Statement map[string]any

// Stamp returns a shallow copy of s with the processing metadata set. A nil
// method is rendered as JSON null.
func (s Statement) Stamp(processedAt, seconds float64, method *string) Statement {
	out := make(Statement, len(s)+3)
	for k, v := range s {
		out[k] = v
	}
	out["processed_at"] = processedAt
	out["processing_time_seconds"] = seconds
	if method == nil {
		out["extraction_method"] = nil
	} else {
		out["extraction_method"] = *method
	}
	return out
}

// BankName is the bank_name field rendered as text.
func (s Statement) BankName() string { return text(s["bank_name"]) }

// Typed converts s into a StatementResult for rendering. Conversion is lenient:
// scalars of the wrong kind are rendered as text, amounts that are not numeric
// become nil, and list entries that are not objects are skipped.
func (s Statement) Typed() *StatementResult {
	r := &StatementResult{
		BankName: text(s["bank_name"]),
		Accounts: []Account{},
	}
	if period, ok := s["statement_period"].(map[string]any); ok {
		r.StatementPeriod = StatementPeriod{StartDate: text(period["start_date"]), EndDate: text(period["end_date"])}
	}
	for _, raw := range list(s["accounts"]) {
		a, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		acct := Account{
			AccountNumber:  text(a["account_number"]),
			AccountName:    text(a["account_name"]),
			Currency:       text(a["currency"]),
			OpeningBalance: amount(a["opening_balance"]),
			ClosingBalance: amount(a["closing_balance"]),
			Transactions:   []Transaction{},
		}
		for _, rawTx := range list(a["transactions"]) {
			tx, ok := rawTx.(map[string]any)
			if !ok {
				continue
			}
			t := Transaction{
				Date:        text(tx["date"]),
				Description: text(tx["description"]),
				Debit:       amount(tx["debit"]),
				Credit:      amount(tx["credit"]),
				Balance:     amount(tx["balance"]),
			}
			if tx["note"] != nil {
				n := text(tx["note"])
				t.Note = &n
			}
			acct.Transactions = append(acct.Transactions, t)
		}
		r.Accounts = append(r.Accounts, acct)
	}
	r.ProcessedAt = number(s["processed_at"])
	r.ProcessingTimeSeconds = number(s["processing_time_seconds"])
	if m, ok := s["extraction_method"].(string); ok {
		r.ExtractionMethod = &m
	}
	return r
}

// ParseStatement decodes a statement JSON object, as stored on a job or printed
// by the CLI, into its typed view.
func ParseStatement(b []byte) (*StatementResult, error) {
	var s Statement
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("decode statement: not an object")
	}
	return s.Typed(), nil
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func amount(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return &f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64); err == nil {
			return &f
		}
	}
	return nil
}

func number(v any) float64 {
	if f := amount(v); f != nil {
		return *f
	}
	return 0
}

// StatementPeriod is the date range a statement covers (YYYY-MM-DD strings, as generated).
type StatementPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Transaction is one statement line. At most one of Debit/Credit is expected to be set.
type Transaction struct {
	Date        string   `json:"date"`
	Description string   `json:"description"`
	Debit       *float64 `json:"debit"`
	Credit      *float64 `json:"credit"`
	Balance     *float64 `json:"balance"`
	Note        *string  `json:"note"`
}

type Account struct {
	AccountNumber  string        `json:"account_number"`
	AccountName    string        `json:"account_name"`
	Currency       string        `json:"currency"`
	OpeningBalance *float64      `json:"opening_balance"`
	ClosingBalance *float64      `json:"closing_balance"`
	Transactions   []Transaction `json:"transactions"`
}

// StatementResult is the typed view of a Statement used by exports.
type StatementResult struct {
	BankName              string          `json:"bank_name"`
	StatementPeriod       StatementPeriod `json:"statement_period"`
	Accounts              []Account       `json:"accounts"`
	ProcessedAt           float64         `json:"processed_at"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
	ExtractionMethod      *string         `json:"extraction_method"`
}

// TransactionCount sums transactions across all accounts.
func (r *StatementResult) TransactionCount() int {
	n := 0
	for _, a := range r.Accounts {
		n += len(a.Transactions)
	}
	return n
}
