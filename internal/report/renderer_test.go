package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/1Levick3/Analyser-chess/internal/models"
	"github.com/1Levick3/Analyser-chess/internal/report"
)

func sampleResult() *models.GameResult {
	return &models.GameResult{
		URL:            "https://www.chess.com/game/live/42",
		EndTime:        1756425600, // 2025-08-29 UTC
		TimeClass:      "blitz",
		PlayedAs:       "white",
		Opponent:       "bob",
		Result:         "resigned",
		PlayerRating:   1500,
		OpponentRating: 1480,
		ECOCode:        "B20",
		OpeningName:    "Sicilian Defense",
		Moves: []models.MoveClassification{
			{Ply: 1, Side: "white", Tier: models.TierGood, Delta: 10},
			{Ply: 2, Side: "black", Tier: models.TierOpponent, Delta: 0},
			{Ply: 3, Side: "white", Tier: models.TierBlunder, Delta: -420},
			{Ply: 4, Side: "black", Tier: models.TierOpponent, Delta: 30},
			{Ply: 5, Side: "white", Tier: models.TierMistake, Delta: -150},
		},
		Blunders:     1,
		Mistakes:     1,
		GoodMoves:    1,
		TrackedMoves: 3,
	}
}

func TestRender_EmptyBatch(t *testing.T) {
	assert.Equal(t, report.EmptyDocument, report.Render(nil, nil))
	assert.Equal(t, report.EmptyDocument, report.Render(&models.BatchAggregate{}, nil))
}

func TestRender_Summary(t *testing.T) {
	agg := &models.BatchAggregate{
		TotalGames:   2,
		TotalMoves:   60,
		Blunders:     1,
		Mistakes:     2,
		GoodMoves:    50,
		Accuracy:     50.0 / 60.0,
		Wins:         1,
		Losses:       1,
		TopOpening:   &models.CategoryCount{Name: "Sicilian Defense", Count: 2},
		TopTimeClass: &models.CategoryCount{Name: "blitz", Count: 2},
	}

	doc := report.Render(agg, nil)

	assert.Contains(t, doc, "Games analyzed: 2")
	assert.Contains(t, doc, "Record: 1 wins, 1 losses, 0 draws")
	assert.NotContains(t, doc, "unknown result")
	assert.Contains(t, doc, "Accuracy: 83.3%")
	assert.Contains(t, doc, "Most played opening: Sicilian Defense (2 games)")
	assert.Contains(t, doc, "Most played time control: blitz (2 games)")
}

func TestRender_SummaryWithUnknownResults(t *testing.T) {
	agg := &models.BatchAggregate{TotalGames: 1, Unknown: 1}
	doc := report.Render(agg, nil)
	assert.Contains(t, doc, "(1 with unknown result)")
}

func TestRender_GameBlock(t *testing.T) {
	r := sampleResult()
	agg := &models.BatchAggregate{
		TotalGames: 1, TotalMoves: 3,
		Blunders: 1, Mistakes: 1, GoodMoves: 1,
		Accuracy: 1.0 / 3.0,
		Losses:   1,
	}

	doc := report.Render(agg, []*models.GameResult{r})

	assert.Contains(t, doc, "Game 1: vs bob (2025-08-29, blitz)")
	assert.Contains(t, doc, "Opening: Sicilian Defense (B20)")
	assert.Contains(t, doc, "Ratings: you 1500, opponent 1480")
	assert.Contains(t, doc, "Result as white: loss")
	assert.Contains(t, doc, "Your moves: 3, 1 blunders (ply 3), 1 mistakes (ply 5)")
	assert.Contains(t, doc, "Slow down on critical moves")
}

func TestRender_UnknownResultKeepsRawValue(t *testing.T) {
	r := sampleResult()
	r.Result = "weird"
	agg := &models.BatchAggregate{TotalGames: 1, TotalMoves: 3, Blunders: 1, Mistakes: 1, GoodMoves: 1, Unknown: 1}

	doc := report.Render(agg, []*models.GameResult{r})
	assert.Contains(t, doc, `Result as white: unknown ("weird")`)
}

func TestGameTipPriority(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.GameResult)
		expected string
	}{
		{
			name:     "blunders outrank everything",
			mutate:   func(r *models.GameResult) {},
			expected: "Slow down on critical moves",
		},
		{
			name: "mistakes next",
			mutate: func(r *models.GameResult) {
				r.Blunders = 0
				r.GoodMoves = 2
			},
			expected: "Look one move deeper",
		},
		{
			name: "inaccuracies after that",
			mutate: func(r *models.GameResult) {
				r.Blunders = 0
				r.Mistakes = 0
				r.Inaccuracies = 1
				r.GoodMoves = 2
			},
			expected: "tighten up your move ordering",
		},
		{
			name: "clean game",
			mutate: func(r *models.GameResult) {
				r.Blunders = 0
				r.Mistakes = 0
				r.GoodMoves = 3
			},
			expected: "Great game! Keep it up.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleResult()
			tt.mutate(r)
			agg := &models.BatchAggregate{TotalGames: 1, TotalMoves: r.TrackedMoves, GoodMoves: r.TrackedMoves}
			doc := report.Render(agg, []*models.GameResult{r})
			assert.Contains(t, doc, tt.expected)
		})
	}
}

func TestRender_GeneralTips(t *testing.T) {
	t.Run("low accuracy tip", func(t *testing.T) {
		agg := &models.BatchAggregate{TotalGames: 1, TotalMoves: 10, GoodMoves: 3, NeutralMoves: 7, Accuracy: 0.3}
		doc := report.Render(agg, nil)
		assert.Contains(t, doc, "Accuracy below 60%")
	})

	t.Run("clean batch fallback", func(t *testing.T) {
		agg := &models.BatchAggregate{TotalGames: 1, TotalMoves: 10, GoodMoves: 10, Accuracy: 1}
		doc := report.Render(agg, nil)
		assert.Contains(t, doc, "Clean batch. Nothing to fix; play on.")
	})
}

func TestRender_NoTrailingNewline(t *testing.T) {
	agg := &models.BatchAggregate{TotalGames: 1, TotalMoves: 1, GoodMoves: 1, Accuracy: 1}
	doc := report.Render(agg, []*models.GameResult{sampleResult()})
	assert.False(t, strings.HasSuffix(doc, "\n"))
}
