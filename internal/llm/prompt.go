package llm

import "strings"

const (
	promptHeader = "<|im_start|>user\n"
	promptCue    = "\n<|im_end|>\n<|im_start|>assistant\n"
)

// statementInstructions is the fixed instruction block. Changing it changes model output,
// so treat edits like a schema migration.
var statementInstructions = strings.Join([]string{
	"Extract complete bank statement data.",
	"Return ONLY valid JSON in the exact structure below. All required fields must be present.",
	"",
	"MANDATORY RULES:",
	"- Each transaction must include:",
	"  - date (YYYY-MM-DD)",
	"  - description",
	"  - debit (number when money left the account, otherwise null)",
	"  - credit (number when money entered the account, otherwise null)",
	"  - balance (always present, never null)",
	"  - note (optional, may be null)",
	"  - At most one of debit or credit may be non-null.",
	"",
	"- Each account must include:",
	"  - account_number",
	"  - account_name",
	"  - currency",
	"  - opening_balance",
	"  - closing_balance",
	"  - every transaction that belongs to the account",
	"",
	"- Statement metadata must include:",
	"  - bank_name",
	"  - statement_period with start_date and end_date (YYYY-MM-DD)",
	"",
	"- Expand partial dates such as \"01 Jan\" to YYYY-MM-DD using the year and month printed on the statement.",
	"",
	"JSON OUTPUT STRUCTURE:",
	"{",
	`  "bank_name": "string",`,
	`  "statement_period": {`,
	`    "start_date": "YYYY-MM-DD",`,
	`    "end_date": "YYYY-MM-DD"`,
	"  },",
	`  "accounts": [`,
	"    {",
	`      "account_number": "string",`,
	`      "account_name": "string",`,
	`      "currency": "string",`,
	`      "opening_balance": number,`,
	`      "closing_balance": number,`,
	`      "transactions": [`,
	"        {",
	`          "date": "YYYY-MM-DD",`,
	`          "description": "string",`,
	`          "debit": number,`,
	`          "credit": number,`,
	`          "balance": number,`,
	`          "note": "string"`,
	"        }",
	"      ]",
	"    }",
	"  ]",
	"}",
	"",
	"The JSON must be syntactically correct and complete.",
	"",
	"Extract from this bank statement:",
	"",
}, "\n")

// BuildStatementPrompt wraps text in the chat template and instruction block.
// text is inserted byte for byte.
func BuildStatementPrompt(text string) string {
	var b strings.Builder
	b.Grow(len(promptHeader) + len(statementInstructions) + len(text) + len(promptCue))
	b.WriteString(promptHeader)
	b.WriteString(statementInstructions)
	b.WriteString(text)
	b.WriteString(promptCue)
	return b.String()
}

// PromptOverhead is the number of bytes BuildStatementPrompt adds around the text.
func PromptOverhead() int {
	return len(promptHeader) + len(statementInstructions) + len(promptCue)
}

// FitText trims text so the finished prompt stays within maxPromptBytes, keeping the
// beginning of the statement. It cuts on a line boundary when one is near, and never
// splits a UTF-8 sequence. maxPromptBytes <= 0 means no limit.
func FitText(text string, maxPromptBytes int) (string, bool) {
	if maxPromptBytes <= 0 {
		return text, false
	}
	budget := maxPromptBytes - PromptOverhead()
	if budget <= 0 {
		return "", text != ""
	}
	if len(text) <= budget {
		return text, false
	}
	cut := truncateUTF8(text, budget)
	if i := strings.LastIndexByte(cut, '\n'); i > len(cut)*3/4 {
		cut = cut[:i]
	}
	return cut, true
}
