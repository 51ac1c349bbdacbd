package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234.50", 1234.5, true},
		{"$12", 12, true},
		{"£ 7.10", 7.1, true},
		{"(40.00)", -40, true},
		{"250.00 DR", -250, true},
		{"250.00CR", 250, true},
		{"-3.25", -3.25, true},
		{"", 0, false},
		{"null", 0, false},
		{"-", 0, false},
		{"twelve", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}

func TestNormalizeStatement(t *testing.T) {
	obj := decode(t, `{
	  "bank_name": "B",
	  "accounts": [{
	    "opening_balance": "1,000.00",
	    "closing_balance": 900,
	    "transactions": [
	      {"debit": "100.00", "credit": "", "balance": "900.00"},
	      {"debit": null, "credit": 5, "balance": "n/a"}
	    ]
	  }, "not an account"]
	}`)

	changed := NormalizeStatement(obj)

	assert.Equal(t, []string{
		"accounts[0].opening_balance(number)",
		"accounts[0].transactions[0].debit(number)",
		"accounts[0].transactions[0].credit(null)",
		"accounts[0].transactions[0].balance(number)",
		"accounts[0].transactions[1].balance(null)",
	}, changed)

	acct := obj["accounts"].([]any)[0].(map[string]any)
	assert.Equal(t, 1000.0, acct["opening_balance"])
	tx := acct["transactions"].([]any)[0].(map[string]any)
	assert.Equal(t, 100.0, tx["debit"])
	assert.Nil(t, tx["credit"])
}

func TestNormalizeStatementWithoutAccounts(t *testing.T) {
	assert.Empty(t, NormalizeStatement(map[string]any{"bank_name": "B"}))
}
