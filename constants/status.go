package constants

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning JobStatus = "RUNNING" // in progress
	JobStatusOK      JobStatus = "OK"      // statement parsed
	JobStatusFailed  JobStatus = "FAILED"  // terminal failure, see error_code
)

// JobSource records where the statement text came from.
type JobSource string

const (
	JobSourceText JobSource = "text"
	JobSourceFile JobSource = "file"
)
