package batch_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/1Levick3/Analyser-chess/internal/analysis"
	"github.com/1Levick3/Analyser-chess/internal/batch"
	"github.com/1Levick3/Analyser-chess/internal/engine"
	"github.com/1Levick3/Analyser-chess/internal/models"
	"github.com/1Levick3/Analyser-chess/internal/report"
	"github.com/1Levick3/Analyser-chess/internal/store"
	"github.com/1Levick3/Analyser-chess/internal/testutil"
	"github.com/1Levick3/Analyser-chess/internal/testutil/mocks"
)

// stubEvaluator returns an even score for every position, except positions
// whose FEN contains failOn, which fail like a crashed engine.
type stubEvaluator struct {
	failOn string
}

func (s *stubEvaluator) Evaluate(ctx context.Context, fen string, depth int) (engine.EvalResult, error) {
	if s.failOn != "" && strings.Contains(fen, s.failOn) {
		return engine.EvalResult{}, stderrors.New("engine crashed")
	}
	return engine.EvalResult{}, nil
}

// After 1. d4 the d-pawn sits alone on the fourth rank.
const fenAfterD4 = "3P4"

func gameRecord(id int, endTime int64, moves string) models.GameRecord {
	pgnText := fmt.Sprintf(`[Event "Live Chess"]
[Site "Chess.com"]
[White "alice"]
[Black "bob"]
[Result "1-0"]

%s 1-0
`, moves)
	return models.GameRecord{
		URL:       fmt.Sprintf("https://www.chess.com/game/live/%d", id),
		PGN:       pgnText,
		TimeClass: "blitz",
		EndTime:   endTime,
		White:     models.PlayerInfo{Username: "alice", Rating: 1500, Result: "win"},
		Black:     models.PlayerInfo{Username: "bob", Rating: 1480, Result: "resigned"},
	}
}

func newRunner(t *testing.T, games []models.GameRecord, ev engine.Evaluator) (*batch.Runner, *store.Store, *mocks.MockDeliverer) {
	st := testutil.NewTestStore(t)

	source := new(mocks.MockGameSource)
	source.On("FetchGamesSince", mock.Anything, "alice", mock.AnythingOfType("int64")).Return(games, nil)

	deliverer := new(mocks.MockDeliverer)
	deliverer.On("Deliver", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	return &batch.Runner{
		Username:    "alice",
		Source:      source,
		Evaluator:   ev,
		Classifier:  analysis.NewClassifier("alice", 8, 12, analysis.DefaultThresholds()),
		Store:       st,
		Deliverer:   deliverer,
		Concurrency: 2,
		Timeout:     time.Minute,
	}, st, deliverer
}

func TestRun_HappyPath(t *testing.T) {
	games := []models.GameRecord{
		gameRecord(1, 1000, "1. e4 e5 2. Nf3"),
		gameRecord(2, 2000, "1. e4 e5"),
	}
	runner, st, deliverer := newRunner(t, games, &stubEvaluator{})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 2, summary.Classified)
	assert.Equal(t, 0, summary.Skipped)
	assert.True(t, summary.Delivered)
	assert.Equal(t, int64(2000), summary.Checkpoint)
	assert.Contains(t, summary.Document, "Games analyzed: 2")

	ts, found, err := st.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2000), ts)

	stored, err := st.ListGames(context.Background(), store.GameFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	latest, err := st.LatestReport(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, summary.Document, latest.Document)
	assert.Equal(t, 2, latest.TotalGames)

	deliverer.AssertNumberOfCalls(t, "Deliver", 1)
}

func TestRun_FirstRunLooksBackOneDay(t *testing.T) {
	st := testutil.NewTestStore(t)

	var since int64
	source := new(mocks.MockGameSource)
	source.On("FetchGamesSince", mock.Anything, "alice", mock.MatchedBy(func(ts int64) bool {
		since = ts
		return true
	})).Return([]models.GameRecord{}, nil)

	runner := &batch.Runner{
		Username:   "alice",
		Source:     source,
		Evaluator:  &stubEvaluator{},
		Classifier: analysis.NewClassifier("alice", 8, 12, analysis.DefaultThresholds()),
		Store:      st,
		Deliverer:  new(mocks.MockDeliverer),
	}

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, time.Now().Add(-24*time.Hour).Unix(), since, 5)
}

func TestRun_NoNewGames(t *testing.T) {
	runner, st, deliverer := newRunner(t, []models.GameRecord{}, &stubEvaluator{})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Fetched)
	assert.False(t, summary.Delivered)

	latest, err := st.LatestReport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest, "an empty window produces no report")
	deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestRun_SkippedGameDoesNotBlockCheckpoint(t *testing.T) {
	unattributable := gameRecord(2, 2000, "1. e4 e5")
	unattributable.White.Username = "carol"
	games := []models.GameRecord{
		gameRecord(1, 1000, "1. e4 e5 2. Nf3"),
		unattributable,
	}
	runner, st, _ := newRunner(t, games, &stubEvaluator{})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Classified)
	assert.Equal(t, 1, summary.Skipped)
	assert.True(t, summary.Delivered)

	// A skipped game was attempted to completion; retrying it cannot help,
	// so it does not hold the checkpoint back.
	assert.Equal(t, int64(2000), summary.Checkpoint)

	ts, found, err := st.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2000), ts)
}

func TestRun_EvalFailureHoldsCheckpoint(t *testing.T) {
	games := []models.GameRecord{
		gameRecord(1, 1000, "1. d4 d5"), // engine fails on this one
		gameRecord(2, 2000, "1. e4 e5 2. Nf3"),
	}
	runner, st, _ := newRunner(t, games, &stubEvaluator{failOn: fenAfterD4})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Classified)
	assert.Equal(t, 1, summary.EvalFailed)
	assert.True(t, summary.Delivered)

	// The failed game stays eligible for the next run, so the checkpoint
	// cannot move past it even though a later game succeeded.
	_, found, err := st.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRun_EvalFailureAfterSuccessAdvancesPartially(t *testing.T) {
	games := []models.GameRecord{
		gameRecord(1, 1000, "1. e4 e5 2. Nf3"),
		gameRecord(2, 2000, "1. d4 d5"), // engine fails on this one
	}
	runner, st, _ := newRunner(t, games, &stubEvaluator{failOn: fenAfterD4})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Classified)
	assert.Equal(t, 1, summary.EvalFailed)
	assert.Equal(t, int64(1000), summary.Checkpoint)

	ts, found, err := st.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1000), ts)
}

func TestRun_AllEvalsFailStillDeliversEmptyReport(t *testing.T) {
	games := []models.GameRecord{
		gameRecord(1, 1000, "1. d4 d5"),
		gameRecord(2, 2000, "1. d4 d5 2. c4"),
	}
	runner, _, deliverer := newRunner(t, games, &stubEvaluator{failOn: fenAfterD4})

	summary, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Classified)
	assert.Equal(t, 2, summary.EvalFailed)
	assert.Equal(t, report.EmptyDocument, summary.Document)
	deliverer.AssertNumberOfCalls(t, "Deliver", 1)
}

func TestRun_AbortOnEvalError(t *testing.T) {
	games := []models.GameRecord{
		gameRecord(1, 1000, "1. d4 d5"),
	}
	runner, st, deliverer := newRunner(t, games, &stubEvaluator{failOn: fenAfterD4})
	runner.AbortOnEvalError = true

	_, err := runner.Run(context.Background())
	require.Error(t, err)

	deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	latest, err := st.LatestReport(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRun_SecondRunStartsFromAdvancedCheckpoint(t *testing.T) {
	st := testutil.NewTestStore(t)

	source := new(mocks.MockGameSource)
	source.On("FetchGamesSince", mock.Anything, "alice", mock.AnythingOfType("int64")).
		Return([]models.GameRecord{gameRecord(1, 1500, "1. e4 e5")}, nil).Once()
	source.On("FetchGamesSince", mock.Anything, "alice", int64(1500)).
		Return([]models.GameRecord{}, nil).Once()

	deliverer := new(mocks.MockDeliverer)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return(nil)

	runner := &batch.Runner{
		Username:   "alice",
		Source:     source,
		Evaluator:  &stubEvaluator{},
		Classifier: analysis.NewClassifier("alice", 8, 12, analysis.DefaultThresholds()),
		Store:      st,
		Deliverer:  deliverer,
	}

	first, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1500), first.Checkpoint)

	// The second run reads the checkpoint the first one wrote, so the
	// already-classified game is never refetched.
	second, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Fetched)
	source.AssertExpectations(t)
}

func TestRun_DeliveryFailureKeepsCheckpoint(t *testing.T) {
	st := testutil.NewTestStore(t)
	require.NoError(t, st.SetCheckpoint(context.Background(), 500))

	source := new(mocks.MockGameSource)
	source.On("FetchGamesSince", mock.Anything, "alice", int64(500)).
		Return([]models.GameRecord{gameRecord(1, 1000, "1. e4 e5")}, nil)

	deliverer := new(mocks.MockDeliverer)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return(stderrors.New("telegram down"))

	runner := &batch.Runner{
		Username:   "alice",
		Source:     source,
		Evaluator:  &stubEvaluator{},
		Classifier: analysis.NewClassifier("alice", 8, 12, analysis.DefaultThresholds()),
		Store:      st,
		Deliverer:  deliverer,
	}

	summary, err := runner.Run(context.Background())
	require.NoError(t, err, "a delivery failure is logged, not fatal")

	assert.False(t, summary.Delivered)
	assert.Equal(t, int64(500), summary.Checkpoint)

	ts, _, err := st.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(500), ts, "the window must be re-sent next run")

	// The analysis itself is not lost.
	latest, err := st.LatestReport(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, latest)
}
