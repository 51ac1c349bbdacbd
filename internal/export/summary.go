package export

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/statement-parser/internal/entity"
)

// reconcileTolerance is the largest closing-balance difference still treated as a match.
var reconcileTolerance = decimal.NewFromFloat(0.01)

// AccountSummary totals one account's transactions in decimal arithmetic.
type AccountSummary struct {
	AccountNumber   string
	Currency        string
	Transactions    int
	Opening         decimal.Decimal
	TotalDebits     decimal.Decimal
	TotalCredits    decimal.Decimal
	ComputedClosing decimal.Decimal
	StatedClosing   *decimal.Decimal
	// Reconciled is set only when the statement states a closing balance.
	Reconciled *bool
}

func Summarize(res *entity.StatementResult) []AccountSummary {
	out := make([]AccountSummary, 0, len(res.Accounts))
	for _, a := range res.Accounts {
		s := AccountSummary{
			AccountNumber: a.AccountNumber,
			Currency:      a.Currency,
			Transactions:  len(a.Transactions),
			Opening:       dec(a.OpeningBalance),
		}
		for _, tx := range a.Transactions {
			s.TotalDebits = s.TotalDebits.Add(dec(tx.Debit))
			s.TotalCredits = s.TotalCredits.Add(dec(tx.Credit))
		}
		s.ComputedClosing = s.Opening.Add(s.TotalCredits).Sub(s.TotalDebits)
		if a.ClosingBalance != nil {
			stated := decimal.NewFromFloat(*a.ClosingBalance)
			s.StatedClosing = &stated
			ok := stated.Sub(s.ComputedClosing).Abs().LessThanOrEqual(reconcileTolerance)
			s.Reconciled = &ok
		}
		out = append(out, s)
	}
	return out
}

func dec(f *float64) decimal.Decimal {
	if f == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*f)
}
