package analysis

import (
	"fmt"

	"github.com/1Levick3/Analyser-chess/internal/errors"
	"github.com/1Levick3/Analyser-chess/internal/models"
)

// outcomeTable maps the source's declared per-side result strings to the
// tracked player's outcome. Anything unlisted is counted as unknown, never
// silently folded into a draw.
var outcomeTable = map[string]string{
	"win":                models.OutcomeWin,
	"checkmated":         models.OutcomeLoss,
	"resigned":           models.OutcomeLoss,
	"timeout":            models.OutcomeLoss,
	"abandoned":          models.OutcomeLoss,
	"lose":               models.OutcomeLoss,
	"stalemate":          models.OutcomeDraw,
	"agreed":             models.OutcomeDraw,
	"repetition":         models.OutcomeDraw,
	"insufficient":       models.OutcomeDraw,
	"timevsinsufficient": models.OutcomeDraw,
	"fiftymove":          models.OutcomeDraw,
	"draw":               models.OutcomeDraw,
}

// Outcome maps a declared result string to win/loss/draw/unknown.
func Outcome(declared string) string {
	if out, ok := outcomeTable[declared]; ok {
		return out
	}
	return models.OutcomeUnknown
}

// categoryCounter counts string categories while remembering first-seen
// order, so ties always break toward the earlier category instead of
// depending on map iteration order.
type categoryCounter struct {
	order  []string
	counts map[string]int
}

func newCategoryCounter() *categoryCounter {
	return &categoryCounter{counts: make(map[string]int)}
}

func (c *categoryCounter) Add(name string) {
	if name == "" {
		return
	}
	if _, seen := c.counts[name]; !seen {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

// Top returns the most frequent category, ties broken by first occurrence.
// The second return is false when nothing was counted.
func (c *categoryCounter) Top() (models.CategoryCount, bool) {
	var best models.CategoryCount
	for _, name := range c.order {
		if c.counts[name] > best.Count {
			best = models.CategoryCount{Name: name, Count: c.counts[name]}
		}
	}
	return best, best.Count > 0
}

// Aggregate computes cross-game totals over one run's results. It is a pure
// function: an empty input yields a zero aggregate with absent most-common
// fields, and per-game tally inconsistencies surface as a fatal
// AggregationError rather than a silently wrong report.
func Aggregate(results []*models.GameResult) (*models.BatchAggregate, error) {
	agg := &models.BatchAggregate{}
	openings := newCategoryCounter()
	timeClasses := newCategoryCounter()

	for _, r := range results {
		tierSum := r.Blunders + r.Mistakes + r.Inaccuracies + r.GoodMoves + r.NeutralMoves
		if tierSum != r.TrackedMoves {
			return nil, errors.NewAggregationError(fmt.Sprintf(
				"tier counts sum to %d but game %s has %d tracked moves", tierSum, r.URL, r.TrackedMoves))
		}

		agg.TotalGames++
		agg.TotalMoves += r.TrackedMoves
		agg.Blunders += r.Blunders
		agg.Mistakes += r.Mistakes
		agg.Inaccuracies += r.Inaccuracies
		agg.GoodMoves += r.GoodMoves
		agg.NeutralMoves += r.NeutralMoves

		switch Outcome(r.Result) {
		case models.OutcomeWin:
			agg.Wins++
		case models.OutcomeLoss:
			agg.Losses++
		case models.OutcomeDraw:
			agg.Draws++
		default:
			agg.Unknown++
		}

		openings.Add(r.OpeningName)
		timeClasses.Add(r.TimeClass)
	}

	if agg.TotalMoves > 0 {
		agg.Accuracy = float64(agg.GoodMoves) / float64(agg.TotalMoves)
	}
	if top, ok := openings.Top(); ok {
		agg.TopOpening = &top
	}
	if top, ok := timeClasses.Top(); ok {
		agg.TopTimeClass = &top
	}
	return agg, nil
}
