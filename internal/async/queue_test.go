package async

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/joseph-ayodele/statement-parser/internal/common"
	"github.com/joseph-ayodele/statement-parser/internal/entity"
	"github.com/joseph-ayodele/statement-parser/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingProcessor struct {
	calls   atomic.Int32
	active  atomic.Int32
	peak    atomic.Int32
	delay   time.Duration
	release chan struct{}
}

func (p *countingProcessor) Process(ctx context.Context, doc entity.Document) pipeline.PipelineResult {
	p.calls.Add(1)
	n := p.active.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	defer p.active.Add(-1)
	if p.release != nil {
		<-p.release
	}
	time.Sleep(p.delay)
	if doc.RawText == "" {
		return pipeline.PipelineResult{Error: common.KindTextEmpty, Message: "Empty text content provided"}
	}
	return pipeline.PipelineResult{Success: true, Message: common.RequestIDFromContext(ctx)}
}

func TestQueueProcessesAllJobs(t *testing.T) {
	proc := &countingProcessor{delay: 5 * time.Millisecond}
	var mu sync.Mutex
	var results []Result
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(2), WithResultHandler(func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}))

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		text := "statement"
		if i == 0 {
			text = ""
		}
		require.NoError(t, q.Enqueue(ctx, Job{Name: "job", Document: entity.Document{RawText: text}, TraceID: "trace-1"}))
	}
	q.Shutdown(ctx)

	assert.Equal(t, int32(10), proc.calls.Load())
	assert.LessOrEqual(t, proc.peak.Load(), int32(3))
	require.Len(t, results, 10)

	failed := 0
	for _, r := range results {
		if !r.Result.Success {
			failed++
			assert.Equal(t, common.KindTextEmpty, r.Result.Error)
		} else {
			assert.Equal(t, "trace-1", r.Result.Message)
		}
		assert.NotZero(t, r.WorkerID)
		assert.False(t, r.Job.SubmittedAt.IsZero())
	}
	assert.Equal(t, 1, failed)
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&countingProcessor{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Name: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestEnqueueRespectsContextWhenFull(t *testing.T) {
	proc := &countingProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))

	bg := context.Background()
	require.NoError(t, q.Enqueue(bg, Job{Name: "a", Document: entity.Document{RawText: "x"}}))
	require.Eventually(t, func() bool { return proc.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(bg, Job{Name: "b", Document: entity.Document{RawText: "x"}}))

	ctx, cancel := context.WithTimeout(bg, 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{Name: "c", Document: entity.Document{RawText: "x"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(proc.release)
	q.Shutdown(bg)
	assert.Equal(t, int32(2), proc.calls.Load())
}
