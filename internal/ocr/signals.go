package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate    = regexp.MustCompile(`\b\d{1,4}[/\-.]\d{1,2}[/\-.]\d{1,4}\b|\b\d{1,2}\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\b`)
	reAmount  = regexp.MustCompile(`\b\d{1,3}(,\d{3})*\.\d{2}\b|\b\d+\.\d{2}\b`)
	reBalance = regexp.MustCompile(`\b(balance|opening|closing|statement|account)\b`)
)

// StatementSignals returns warnings for recognized text that shows none of the
// usual statement markers. OCR that read the wrong language or a blank scan
// usually trips at least one of them.
func StatementSignals(text string) []string {
	t := strings.ToLower(text)
	var warns []string
	if !reDate.MatchString(t) {
		warns = append(warns, "no date-like tokens in recognized text")
	}
	if !reAmount.MatchString(t) {
		warns = append(warns, "no amount-like tokens in recognized text")
	}
	if !reBalance.MatchString(t) {
		warns = append(warns, "no statement keywords in recognized text")
	}
	return warns
}
