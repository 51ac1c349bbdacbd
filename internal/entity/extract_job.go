package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-parser/constants"
)

// ExtractJob is the audit row kept for every processed statement.
type ExtractJob struct {
	ID           uuid.UUID           `json:"id"`
	CustomerID   string              `json:"customer_id,omitempty"`
	Filename     string              `json:"filename,omitempty"`
	Source       constants.JobSource `json:"source"`
	Status       constants.JobStatus `json:"status"`
	Method       string              `json:"method,omitempty"`
	ErrorCode    string              `json:"error_code,omitempty"`
	Message      string              `json:"message,omitempty"`
	ProcessingMS int64               `json:"processing_ms"`
	ResultJSON   json.RawMessage     `json:"result,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}
