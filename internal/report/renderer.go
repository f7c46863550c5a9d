package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/1Levick3/Analyser-chess/internal/analysis"
	"github.com/1Levick3/Analyser-chess/internal/models"
)

// EmptyDocument is rendered for a zero-game batch.
const EmptyDocument = "No games analyzed. Nothing to report."

// lowAccuracy triggers an extra improvement tip in the general-tips block.
const lowAccuracy = 0.6

// Render produces the human-readable report document: a summary block, one
// block per game, and a general-tips block. It is total over every valid
// aggregate/result pair and never fails; splitting into transport-sized
// chunks is the delivery layer's job.
func Render(agg *models.BatchAggregate, results []*models.GameResult) string {
	if agg == nil || agg.TotalGames == 0 {
		return EmptyDocument
	}

	var sb strings.Builder
	writeSummary(&sb, agg)
	for i, r := range results {
		writeGame(&sb, i+1, r)
	}
	writeTips(&sb, agg)
	return strings.TrimRight(sb.String(), "\n")
}

func writeSummary(sb *strings.Builder, agg *models.BatchAggregate) {
	fmt.Fprintf(sb, "Chess Analysis Report\n")
	fmt.Fprintf(sb, "=====================\n\n")
	fmt.Fprintf(sb, "Games analyzed: %d\n", agg.TotalGames)
	fmt.Fprintf(sb, "Record: %d wins, %d losses, %d draws", agg.Wins, agg.Losses, agg.Draws)
	if agg.Unknown > 0 {
		fmt.Fprintf(sb, " (%d with unknown result)", agg.Unknown)
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Moves played: %d\n", agg.TotalMoves)
	fmt.Fprintf(sb, "Blunders: %d, mistakes: %d, inaccuracies: %d, good moves: %d\n",
		agg.Blunders, agg.Mistakes, agg.Inaccuracies, agg.GoodMoves)
	fmt.Fprintf(sb, "Accuracy: %.1f%%\n", agg.Accuracy*100)
	if agg.TopOpening != nil {
		fmt.Fprintf(sb, "Most played opening: %s (%d games)\n", agg.TopOpening.Name, agg.TopOpening.Count)
	}
	if agg.TopTimeClass != nil {
		fmt.Fprintf(sb, "Most played time control: %s (%d games)\n", agg.TopTimeClass.Name, agg.TopTimeClass.Count)
	}
	sb.WriteString("\n")
}

func writeGame(sb *strings.Builder, n int, r *models.GameResult) {
	date := time.Unix(r.EndTime, 0).UTC().Format("2006-01-02")
	fmt.Fprintf(sb, "Game %d: vs %s (%s, %s)\n", n, r.Opponent, date, r.TimeClass)
	fmt.Fprintf(sb, "  Opening: %s (%s)\n", r.OpeningName, r.ECOCode)
	if r.PlayerRating > 0 || r.OpponentRating > 0 {
		fmt.Fprintf(sb, "  Ratings: you %d, opponent %d\n", r.PlayerRating, r.OpponentRating)
	}
	fmt.Fprintf(sb, "  Result as %s: %s\n", r.PlayedAs, Outcome(r))
	fmt.Fprintf(sb, "  Your moves: %d", r.TrackedMoves)
	writeTierPlies(sb, "blunders", r.Blunders, r.PliesFor(models.TierBlunder))
	writeTierPlies(sb, "mistakes", r.Mistakes, r.PliesFor(models.TierMistake))
	writeTierPlies(sb, "inaccuracies", r.Inaccuracies, r.PliesFor(models.TierInaccuracy))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  Tip: %s\n\n", gameTip(r))
}

func writeTierPlies(sb *strings.Builder, label string, count int, plies []int) {
	if count == 0 {
		return
	}
	strs := make([]string, len(plies))
	for i, p := range plies {
		strs[i] = fmt.Sprintf("%d", p)
	}
	fmt.Fprintf(sb, ", %d %s (ply %s)", count, label, strings.Join(strs, ", "))
}

// gameTip picks one canned tip by the first non-zero tier in priority order.
func gameTip(r *models.GameResult) string {
	switch {
	case r.Blunders > 0:
		return "Slow down on critical moves; double-check captures and checks before committing."
	case r.Mistakes > 0:
		return "Look one move deeper before trading; most of your losses came from second-best choices."
	case r.Inaccuracies > 0:
		return "Solid game overall; tighten up your move ordering in quiet positions."
	default:
		return "Great game! Keep it up."
	}
}

func writeTips(sb *strings.Builder, agg *models.BatchAggregate) {
	sb.WriteString("General advice\n")
	sb.WriteString("--------------\n")
	any := false
	if agg.Blunders > 0 {
		fmt.Fprintf(sb, "- You blundered %d times. Practice tactics puzzles to sharpen board vision.\n", agg.Blunders)
		any = true
	}
	if agg.Mistakes > 0 {
		fmt.Fprintf(sb, "- %d mistakes across the batch. Review the flagged plies and find the better move yourself.\n", agg.Mistakes)
		any = true
	}
	if agg.Inaccuracies > 0 {
		fmt.Fprintf(sb, "- %d inaccuracies. Small improvements in calm positions add up.\n", agg.Inaccuracies)
		any = true
	}
	if agg.Accuracy < lowAccuracy {
		fmt.Fprintf(sb, "- Accuracy below %.0f%%. Consider longer time controls while you build consistency.\n", lowAccuracy*100)
		any = true
	}
	if !any {
		sb.WriteString("- Clean batch. Nothing to fix; play on.\n")
	}
}

// Outcome renders the tracked player's normalized result for one game.
func Outcome(r *models.GameResult) string {
	out := analysis.Outcome(r.Result)
	if out == models.OutcomeUnknown {
		return fmt.Sprintf("unknown (%q)", r.Result)
	}
	return out
}
