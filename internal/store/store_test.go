package store_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1Levick3/Analyser-chess/internal/models"
	"github.com/1Levick3/Analyser-chess/internal/store"
	"github.com/1Levick3/Analyser-chess/internal/testutil"
)

func storedResult(id int, opts func(*models.GameResult)) *models.GameResult {
	r := &models.GameResult{
		URL:            fmt.Sprintf("https://www.chess.com/game/live/%d", id),
		EndTime:        int64(1756400000 + id),
		TimeClass:      "blitz",
		PlayedAs:       "white",
		Opponent:       "bob",
		Result:         "win",
		PlayerRating:   1500,
		OpponentRating: 1480,
		ECOCode:        "B20",
		OpeningName:    "Sicilian Defense",
		GoodMoves:      10,
		TrackedMoves:   10,
	}
	if opts != nil {
		opts(r)
	}
	return r
}

func TestCheckpoint_MissingOnFirstRun(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, found, err := s.Checkpoint(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCheckpoint_Roundtrip(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCheckpoint(ctx, 1756400000))

	ts, found, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1756400000), ts)
}

func TestCheckpoint_NeverMovesBackwards(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCheckpoint(ctx, 2000))
	require.NoError(t, s.SetCheckpoint(ctx, 1000))

	ts, found, err := s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2000), ts)

	require.NoError(t, s.SetCheckpoint(ctx, 3000))
	ts, _, err = s.Checkpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), ts)
}

func TestSaveResults_UpsertByGameID(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveResults(ctx, []*models.GameResult{storedResult(1, nil)}))

	// A rerun of the same game overwrites the tallies instead of inserting
	// a duplicate row.
	rerun := storedResult(1, func(r *models.GameResult) {
		r.Blunders = 2
		r.GoodMoves = 8
	})
	require.NoError(t, s.SaveResults(ctx, []*models.GameResult{rerun}))

	games, err := s.ListGames(ctx, store.GameFilter{})
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, 2, games[0].Blunders)
	assert.Equal(t, 8, games[0].GoodMoves)
}

func TestListGames_FiltersAndOrder(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	results := []*models.GameResult{
		storedResult(1, nil),
		storedResult(2, func(r *models.GameResult) { r.TimeClass = "rapid" }),
		storedResult(3, func(r *models.GameResult) { r.Opponent = "carol"; r.OpeningName = "French Defense" }),
	}
	require.NoError(t, s.SaveResults(ctx, results))

	t.Run("newest first", func(t *testing.T) {
		games, err := s.ListGames(ctx, store.GameFilter{})
		require.NoError(t, err)
		require.Len(t, games, 3)
		assert.Equal(t, int64(1756400003), games[0].EndTime)
		assert.Equal(t, int64(1756400001), games[2].EndTime)
	})

	t.Run("by time class", func(t *testing.T) {
		games, err := s.ListGames(ctx, store.GameFilter{TimeClass: "rapid"})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "rapid", games[0].TimeClass)
	})

	t.Run("by opponent", func(t *testing.T) {
		games, err := s.ListGames(ctx, store.GameFilter{Opponent: "carol"})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, "French Defense", games[0].OpeningName)
	})

	t.Run("by opening", func(t *testing.T) {
		games, err := s.ListGames(ctx, store.GameFilter{OpeningName: "Sicilian Defense"})
		require.NoError(t, err)
		assert.Len(t, games, 2)
	})

	t.Run("limit and offset", func(t *testing.T) {
		games, err := s.ListGames(ctx, store.GameFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, int64(1756400002), games[0].EndTime)
	})

	t.Run("no match", func(t *testing.T) {
		games, err := s.ListGames(ctx, store.GameFilter{TimeClass: "bullet"})
		require.NoError(t, err)
		assert.Empty(t, games)
	})
}

func TestReports_LatestWins(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestReport(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	_, err = s.SaveReport(ctx, "first report", 1)
	require.NoError(t, err)
	id2, err := s.SaveReport(ctx, "second report", 3)
	require.NoError(t, err)

	latest, err = s.LatestReport(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, id2, latest.ID)
	assert.Equal(t, "second report", latest.Document)
	assert.Equal(t, 3, latest.TotalGames)
}
