package llm

import (
	"strconv"
	"strings"
)

var (
	accountAmounts     = []string{"opening_balance", "closing_balance"}
	transactionAmounts = []string{"debit", "credit", "balance"}
	currencySymbols    = strings.NewReplacer("$", "", "£", "", "€", "", "¥", "", "₹", "", ",", "", " ", "")
)

// NormalizeStatement coerces amount fields that the model emitted as strings
// ("1,234.50", "$12", "(40.00)") into numbers, and "", "null", "-" into null, so the
// object decodes into typed structs. Strings that are not amounts become null.
// It returns a description of every field it touched, in document order.
func NormalizeStatement(obj map[string]any) []string {
	var changed []string
	accounts, _ := obj["accounts"].([]any)
	for ai, a := range accounts {
		acct, ok := a.(map[string]any)
		if !ok {
			continue
		}
		for _, k := range accountAmounts {
			if tag := coerceAmount(acct, k); tag != "" {
				changed = append(changed, "accounts["+strconv.Itoa(ai)+"]."+k+tag)
			}
		}
		txs, _ := acct["transactions"].([]any)
		for ti, t := range txs {
			tx, ok := t.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range transactionAmounts {
				if tag := coerceAmount(tx, k); tag != "" {
					changed = append(changed, "accounts["+strconv.Itoa(ai)+"].transactions["+strconv.Itoa(ti)+"]."+k+tag)
				}
			}
		}
	}
	return changed
}

// coerceAmount rewrites m[k] in place and returns "" when nothing changed,
// "(number)" when a string was parsed and "(null)" when it was blanked.
func coerceAmount(m map[string]any, k string) string {
	v, ok := m[k]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if f, ok := ParseAmount(s); ok {
		m[k] = f
		return "(number)"
	}
	m[k] = nil
	return "(null)"
}

// ParseAmount parses a printed money amount. Parentheses and a trailing "DR" mean negative.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "null", "none", "-", "n/a":
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "DR"):
		neg = true
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "CR"):
		s = s[:len(s)-2]
	}
	s = currencySymbols.Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
