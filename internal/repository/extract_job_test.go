package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/statement-parser/constants"
	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db, nil) })
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, HealthCheck(ctx, db, time.Second, nil))
	return db
}

func TestExtractJobLifecycle_Success(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractJobRepository(openTestDB(t), nil)

	job, err := repo.Start(ctx, entity.ExtractJob{CustomerID: "c1", Filename: "jan.pdf", Source: constants.JobSourceFile})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.Equal(t, constants.JobStatusRunning, job.Status)

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusRunning, got.Status)
	assert.Nil(t, got.FinishedAt)
	assert.Nil(t, got.ResultJSON)

	require.NoError(t, repo.FinishSuccess(ctx, job.ID, "direct", 1234, []byte(`{"bank_name":"Test Bank"}`)))

	got, err = repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusOK, got.Status)
	assert.Equal(t, "direct", got.Method)
	assert.Equal(t, int64(1234), got.ProcessingMS)
	assert.JSONEq(t, `{"bank_name":"Test Bank"}`, string(got.ResultJSON))
	assert.Equal(t, "jan.pdf", got.Filename)
	assert.Equal(t, constants.JobSourceFile, got.Source)
	require.NotNil(t, got.FinishedAt)
	assert.False(t, got.FinishedAt.Before(got.StartedAt))
}

func TestExtractJobLifecycle_Failure(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractJobRepository(openTestDB(t), nil)

	job, err := repo.Start(ctx, entity.ExtractJob{Source: constants.JobSourceText})
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, job.ID, "none", "TEXT_EMPTY", "Empty text content provided", 3))

	got, err := repo.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.JobStatusFailed, got.Status)
	assert.Equal(t, "TEXT_EMPTY", got.ErrorCode)
	assert.Equal(t, "Empty text content provided", got.Message)
}

func TestExtractJob_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractJobRepository(openTestDB(t), nil)

	_, err := repo.Get(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	assert.Equal(t, common.KindNotFound, common.KindOf(err, common.KindInternal))

	err = repo.FinishFailure(ctx, uuid.New(), "none", "X", "x", 0)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestExtractJob_ListByCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractJobRepository(openTestDB(t), nil).(*extractJobRepo)

	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		job, err := repo.Start(ctx, entity.ExtractJob{CustomerID: "c1", Source: constants.JobSourceText})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	_, err := repo.Start(ctx, entity.ExtractJob{CustomerID: "c2", Source: constants.JobSourceText})
	require.NoError(t, err)

	jobs, err := repo.ListByCustomer(ctx, "c1", 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, ids[2], jobs[0].ID)
	assert.Equal(t, ids[1], jobs[1].ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"}, nil)
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &DB{Driver: DriverPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", pg.rebind("UPDATE t SET a = ? WHERE id = ?"))

	lite := &DB{Driver: DriverSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}
