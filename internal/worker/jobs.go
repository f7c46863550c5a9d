package worker

import (
	"context"

	"github.com/1Levick3/Analyser-chess/internal/batch"
	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// BatchRunner runs one analysis batch. The interface keeps jobs mockable in
// tests without dragging in the whole pipeline.
type BatchRunner interface {
	Run(ctx context.Context) (*batch.Summary, error)
}

// RunBatchJob executes one full analysis batch on a pool worker.
type RunBatchJob struct {
	Runner BatchRunner
}

func (j *RunBatchJob) Name() string { return "run_batch" }

func (j *RunBatchJob) Run(ctx context.Context) error {
	summary, err := j.Runner.Run(ctx)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("batch done: %d fetched, %d classified, %d skipped, delivered=%t",
		summary.Fetched, summary.Classified, summary.Skipped, summary.Delivered)
	return nil
}

var _ BatchRunner = (*batch.Runner)(nil)
