package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
)

type ExtractJobRepository interface {
	Start(ctx context.Context, job entity.ExtractJob) (*entity.ExtractJob, error)
	FinishSuccess(ctx context.Context, jobID uuid.UUID, method string, processingMS int64, result []byte) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, method, code, message string, processingMS int64) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: time.Now}
}

func (r *extractJobRepo) Start(ctx context.Context, job entity.ExtractJob) (*entity.ExtractJob, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.Status = constants.JobStatusRunning
	job.StartedAt = r.now().UTC()

	_, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`INSERT INTO extract_job (id, customer_id, filename, source, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`),
		job.ID.String(), job.CustomerID, job.Filename, string(job.Source), string(job.Status), job.StartedAt.UnixMilli(),
	)
	if err != nil {
		r.log.Error("extract_job start failed", "job_id", job.ID, "err", err)
		return nil, err
	}
	r.log.Info("extract_job started", "job_id", job.ID, "source", job.Source)
	return &job, nil
}

func (r *extractJobRepo) FinishSuccess(ctx context.Context, jobID uuid.UUID, method string, processingMS int64, result []byte) error {
	err := r.finish(ctx, jobID, constants.JobStatusOK, method, "", "", processingMS, result)
	if err != nil {
		r.log.Error("extract_job finish(OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (OK)", "job_id", jobID, "method", method, "processing_ms", processingMS)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, method, code, message string, processingMS int64) error {
	err := r.finish(ctx, jobID, constants.JobStatusFailed, method, code, message, processingMS, nil)
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error_code", code, "error", message)
	return nil
}

func (r *extractJobRepo) finish(ctx context.Context, jobID uuid.UUID, status constants.JobStatus, method, code, message string, processingMS int64, result []byte) error {
	var resultCol any
	if result != nil {
		resultCol = string(result)
	}
	res, err := r.db.SQL.ExecContext(ctx, r.db.rebind(
		`UPDATE extract_job SET status = ?, method = ?, error_code = ?, message = ?, processing_ms = ?, result_json = ?, finished_at = ? WHERE id = ?`),
		string(status), method, code, message, processingMS, resultCol, r.now().UTC().UnixMilli(), jobID.String(),
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewAppError(common.KindNotFound, "extract job not found", common.ErrNotFound)
	}
	return nil
}

const selectJob = `SELECT id, customer_id, filename, source, status, method, error_code, message, processing_ms, result_json, started_at, finished_at FROM extract_job`

func (r *extractJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	row := r.db.SQL.QueryRowContext(ctx, r.db.rebind(selectJob+` WHERE id = ?`), jobID.String())
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError(common.KindNotFound, "extract job not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *extractJobRepo) ListByCustomer(ctx context.Context, customerID string, limit int) ([]entity.ExtractJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.SQL.QueryContext(ctx, r.db.rebind(selectJob+` WHERE customer_id = ? ORDER BY started_at DESC LIMIT ?`), customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.ExtractJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *job)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*entity.ExtractJob, error) {
	var (
		job        entity.ExtractJob
		id         string
		source     string
		status     string
		result     sql.NullString
		startedAt  int64
		finishedAt sql.NullInt64
	)
	if err := s.Scan(&id, &job.CustomerID, &job.Filename, &source, &status, &job.Method, &job.ErrorCode,
		&job.Message, &job.ProcessingMS, &result, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	job.ID = parsed
	job.Source = constants.JobSource(source)
	job.Status = constants.JobStatus(status)
	if result.Valid {
		job.ResultJSON = []byte(result.String)
	}
	job.StartedAt = time.UnixMilli(startedAt).UTC()
	if finishedAt.Valid {
		t := time.UnixMilli(finishedAt.Int64).UTC()
		job.FinishedAt = &t
	}
	return &job, nil
}
