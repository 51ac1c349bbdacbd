package llm

const datePattern = `^\d{4}-\d{2}-\d{2}$`

// BuildStatementJSONSchema returns the JSON Schema (draft 2020-12 subset) used for
// warn and strict validation. It encodes the prompt's rules: ISO dates, a balance on
// every transaction and at most one of debit/credit.
func BuildStatementJSONSchema() map[string]any {
	transaction := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date":        map[string]any{"type": "string", "pattern": datePattern},
			"description": map[string]any{"type": "string"},
			"debit":       nullableNumber(),
			"credit":      nullableNumber(),
			"balance":     map[string]any{"type": "number"},
			"note":        map[string]any{"type": []any{"string", "null"}},
		},
		"required": []any{"date", "description", "balance"},
		// debit and credit may not both carry an amount
		"not": map[string]any{
			"properties": map[string]any{
				"debit":  map[string]any{"type": "number"},
				"credit": map[string]any{"type": "number"},
			},
			"required": []any{"debit", "credit"},
		},
	}

	account := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"account_number":  map[string]any{"type": "string"},
			"account_name":    map[string]any{"type": "string"},
			"currency":        map[string]any{"type": "string"},
			"opening_balance": nullableNumber(),
			"closing_balance": nullableNumber(),
			"transactions":    map[string]any{"type": "array", "items": transaction},
		},
		"required": []any{"account_number", "transactions"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bank_name": map[string]any{"type": "string", "minLength": 1},
			"statement_period": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"start_date": map[string]any{"type": "string", "pattern": datePattern},
					"end_date":   map[string]any{"type": "string", "pattern": datePattern},
				},
				"required": []any{"start_date", "end_date"},
			},
			"accounts": map[string]any{"type": "array", "items": account},
		},
		"required": []any{"bank_name", "statement_period", "accounts"},
	}
}

func nullableNumber() map[string]any {
	return map[string]any{"type": []any{"number", "null"}}
}
