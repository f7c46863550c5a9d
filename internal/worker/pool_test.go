package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1Levick3/Analyser-chess/internal/batch"
	"github.com/1Levick3/Analyser-chess/internal/worker"
)

type recordedJob struct {
	name string
	done chan struct{}
}

func (j *recordedJob) Name() string { return j.name }

func (j *recordedJob) Run(ctx context.Context) error {
	close(j.done)
	return nil
}

// blockingJob occupies a worker until released.
type blockingJob struct {
	release chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	<-j.release
	return nil
}

func TestPool_RunsSubmittedJobs(t *testing.T) {
	pool := worker.NewPool(2, 4)
	pool.Start(context.Background())

	jobs := make([]*recordedJob, 3)
	for i := range jobs {
		jobs[i] = &recordedJob{name: "job", done: make(chan struct{})}
		require.True(t, pool.Submit(jobs[i]))
	}

	for _, j := range jobs {
		select {
		case <-j.done:
		case <-time.After(2 * time.Second):
			t.Fatal("job was never executed")
		}
	}
	pool.Stop()
}

func TestPool_SubmitRejectsWhenQueueFull(t *testing.T) {
	pool := worker.NewPool(1, 1)
	// Not started: nothing drains the queue.

	first := &blockingJob{release: make(chan struct{})}
	assert.True(t, pool.Submit(first))
	assert.False(t, pool.Submit(&blockingJob{release: make(chan struct{})}))
	assert.Equal(t, 1, pool.QueueSize())
}

type stubRunner struct {
	mu      sync.Mutex
	runs    int
	summary *batch.Summary
	err     error
}

func (s *stubRunner) Run(ctx context.Context) (*batch.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	return s.summary, s.err
}

func TestRunBatchJob(t *testing.T) {
	runner := &stubRunner{summary: &batch.Summary{Fetched: 2, Classified: 2, Delivered: true}}
	job := &worker.RunBatchJob{Runner: runner}

	assert.Equal(t, "run_batch", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, runner.runs)
}

func TestRunBatchJob_PropagatesError(t *testing.T) {
	runner := &stubRunner{err: assert.AnError}
	job := &worker.RunBatchJob{Runner: runner}

	assert.Error(t, job.Run(context.Background()))
}
