package pipeline

import (
	"github.com/joseph-ayodele/statement-parser/internal/common"
)

// PipelineResult is the only value the Processor returns. Data holds an
// entity.Statement on success, a *Diagnostic for INVALID_JSON_FORMAT and
// INVALID_AI_OUTPUT, and nil otherwise.
type PipelineResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    any              `json:"data"`
	Error   common.ErrorKind `json:"error,omitempty"`

	// JobID is the audit row id when a job store is configured.
	JobID string `json:"-"`
}

// Diagnostic carries what the model produced when its answer could not be used.
type Diagnostic struct {
	RawResponse      string   `json:"raw_response"`
	ExtractedJSON    string   `json:"extracted_json,omitempty"`
	ParseError       string   `json:"parse_error,omitempty"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
}

func failure(kind common.ErrorKind, msg string, data any) PipelineResult {
	return PipelineResult{Success: false, Message: msg, Error: kind, Data: data}
}

// Code is the metrics/audit label for a result.
func (r PipelineResult) Code() string {
	if r.Success {
		return "OK"
	}
	if r.Error == "" {
		return string(common.KindInternal)
	}
	return string(r.Error)
}
