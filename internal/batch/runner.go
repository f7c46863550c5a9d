package batch

import (
	"context"
	"sync"
	"time"

	"github.com/1Levick3/Analyser-chess/internal/analysis"
	"github.com/1Levick3/Analyser-chess/internal/chesscom"
	"github.com/1Levick3/Analyser-chess/internal/delivery"
	"github.com/1Levick3/Analyser-chess/internal/engine"
	"github.com/1Levick3/Analyser-chess/internal/errors"
	"github.com/1Levick3/Analyser-chess/internal/logger"
	"github.com/1Levick3/Analyser-chess/internal/models"
	"github.com/1Levick3/Analyser-chess/internal/report"
	"github.com/1Levick3/Analyser-chess/internal/store"
)

// game status after a run
const (
	statusAbandoned = iota // never started (timeout or batch abort)
	statusClassified
	statusSkipped    // malformed or attribution failure; retrying would not help
	statusEvalFailed // engine failure; eligible again next run
)

// Runner wires one batch run end to end: checkpoint read, fetch, parallel
// classification bounded by engine sessions, aggregation, rendering,
// persistence, delivery, checkpoint advance.
type Runner struct {
	Username    string
	Source      chesscom.GameSource
	Evaluator   engine.Evaluator
	Classifier  *analysis.Classifier
	Store       *store.Store
	Deliverer   delivery.Deliverer
	Concurrency int
	Timeout     time.Duration

	// AbortOnEvalError turns an engine failure for one game into a failure
	// of the whole batch instead of skipping that game.
	AbortOnEvalError bool
}

// Summary describes what one run did.
type Summary struct {
	Fetched    int
	Classified int
	Skipped    int
	EvalFailed int
	Abandoned  int
	Delivered  bool
	Checkpoint int64
	Document   string
}

// firstRunWindow is how far back the first run looks when no checkpoint
// exists yet: the most recent day only.
const firstRunWindow = 24 * time.Hour

// Run executes one batch. Per-game failures never abort the batch silently;
// partial success is the expected steady state. The checkpoint only advances
// once delivery succeeds, and never past a game that must stay eligible for
// the next run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	log := logger.FromContext(ctx).WithPrefix("batch").WithField("username", r.Username)
	summary := &Summary{}

	since, found, err := r.Store.Checkpoint(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		since = time.Now().Add(-firstRunWindow).Unix()
		log.Info("no checkpoint, analyzing games from the most recent day only")
	}

	games, err := r.Source.FetchGamesSince(ctx, r.Username, since)
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(games)
	if len(games) == 0 {
		log.Info("no new games to analyze")
		summary.Checkpoint = since
		return summary, nil
	}

	var batchCtx context.Context
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, r.Timeout)
	} else {
		batchCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	results, statuses := r.classifyAll(batchCtx, cancel, games)

	var classified []*models.GameResult
	var evalErr error
	for i, st := range statuses {
		switch st {
		case statusClassified:
			classified = append(classified, results[i])
			summary.Classified++
		case statusSkipped:
			summary.Skipped++
		case statusEvalFailed:
			summary.EvalFailed++
			if evalErr == nil {
				evalErr = errors.NewEvaluationError(0, nil)
			}
		case statusAbandoned:
			summary.Abandoned++
		}
	}
	log.Info("run classified %d of %d games (%d skipped, %d eval failures, %d abandoned)",
		summary.Classified, summary.Fetched, summary.Skipped, summary.EvalFailed, summary.Abandoned)

	if r.AbortOnEvalError && evalErr != nil {
		// Abort policy: nothing is reported and the checkpoint stays put, so
		// every game in this window is retried next run.
		return summary, evalErr
	}

	agg, err := analysis.Aggregate(classified)
	if err != nil {
		// Tally invariant violation: implementation bug, never suppressed.
		return summary, err
	}
	summary.Document = report.Render(agg, classified)

	if len(classified) > 0 {
		if err := r.Store.SaveResults(ctx, classified); err != nil {
			return summary, err
		}
	}
	if _, err := r.Store.SaveReport(ctx, summary.Document, agg.TotalGames); err != nil {
		return summary, err
	}

	if err := r.Deliverer.Deliver(ctx, summary.Document); err != nil {
		// Non-fatal: the checkpoint stays put, so this window is re-analyzed
		// and re-sent next run (at-least-once notification semantics).
		log.Error("report delivery failed, checkpoint not advanced: %v", err)
		summary.Checkpoint = since
		return summary, nil
	}
	summary.Delivered = true

	if checkpoint := advanceableCheckpoint(games, statuses); checkpoint > 0 {
		if err := r.Store.SetCheckpoint(ctx, checkpoint); err != nil {
			return summary, err
		}
		summary.Checkpoint = checkpoint
	} else {
		summary.Checkpoint = since
	}
	return summary, nil
}

// classifyAll classifies games in parallel, at most Concurrency at a time.
// Within a game, plies are strictly sequential; across games there is no
// shared mutable state beyond the evaluator handle. Each goroutine writes
// only its own slot.
func (r *Runner) classifyAll(ctx context.Context, cancel context.CancelFunc, games []models.GameRecord) ([]*models.GameResult, []int) {
	log := logger.FromContext(ctx).WithPrefix("batch")

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]*models.GameResult, len(games))
	statuses := make([]int, len(games))
	sem := make(chan struct{}, concurrency)

	var wg sync.WaitGroup
	for i, rec := range games {
		wg.Add(1)
		go func(i int, rec models.GameRecord) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				statuses[i] = statusAbandoned
				return
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				statuses[i] = statusAbandoned
				return
			}

			res, err := r.Classifier.ClassifyGame(ctx, rec, r.Evaluator)
			switch {
			case err == nil:
				results[i] = res
				statuses[i] = statusClassified
			case errors.HasCode(err, errors.ErrCodeMalformedGame),
				errors.HasCode(err, errors.ErrCodeAttribution):
				log.Warn("skipping game %s: %v", rec.URL, err)
				statuses[i] = statusSkipped
			case ctx.Err() != nil:
				statuses[i] = statusAbandoned
			default:
				log.Error("classification of %s failed: %v", rec.URL, err)
				statuses[i] = statusEvalFailed
				if r.AbortOnEvalError {
					cancel()
				}
			}
		}(i, rec)
	}
	wg.Wait()
	return results, statuses
}

// advanceableCheckpoint returns the largest end time such that every game
// at or before it was attempted to completion, or 0 when nothing can
// advance. Games are in ascending end time order, so stopping at the first
// eval failure or abandoned game keeps those eligible for the next run.
func advanceableCheckpoint(games []models.GameRecord, statuses []int) int64 {
	var checkpoint int64
	for i, g := range games {
		if statuses[i] == statusEvalFailed || statuses[i] == statusAbandoned {
			break
		}
		if g.EndTime > checkpoint {
			checkpoint = g.EndTime
		}
	}
	return checkpoint
}
