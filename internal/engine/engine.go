package engine

import "context"

// EvalResult is one position's evaluation in a single fixed reference frame:
// CP and Mate are always from white's perspective, regardless of the side to
// move. Mate, when set, is the forced-mate distance in moves (positive means
// white mates, negative means black mates) and takes precedence over CP.
type EvalResult struct {
	CP       float64
	Mate     *int
	BestMove string
}

// Evaluator is the position-scoring capability the classifier consumes.
// Implementations must keep the reference frame fixed across all calls in a
// run. A pooled implementation bounds concurrency to its session count; a
// single Engine serializes calls internally.
type Evaluator interface {
	Evaluate(ctx context.Context, fen string, depth int) (EvalResult, error)
}
