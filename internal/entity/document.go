package entity

import (
	"time"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
)

// Document is one unit of input. Exactly one of RawText, Bytes or Path is the source.
type Document struct {
	RawText    string
	Bytes      []byte
	Filename   string
	Path       string
	ForceOCR   bool
	CustomerID string
}

// IsFile reports whether the document must go through text acquisition.
func (d Document) IsFile() bool {
	return len(d.Bytes) > 0 || d.Path != ""
}

// ExtractionOutcome is what text acquisition produced for one document.
type ExtractionOutcome struct {
	Method   constants.ExtractionMethod
	Text     string
	Success  bool
	Error    common.ErrorKind
	Message  string
	Pages    int
	Duration time.Duration
	Warnings []string
}
