package models

// Outcome buckets for the tracked player. Unrecognized declared results
// land in OutcomeUnknown and are never folded into draws.
const (
	OutcomeWin     = "win"
	OutcomeLoss    = "loss"
	OutcomeDraw    = "draw"
	OutcomeUnknown = "unknown"
)

// CategoryCount is one category's occurrence count within a batch.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// BatchAggregate summarizes all GameResults of one run. It is derived
// read-only from the result list and recomputed fully each run.
// TopOpening and TopTimeClass are nil for an empty batch; callers must
// handle absence rather than a placeholder value.
type BatchAggregate struct {
	TotalGames   int     `json:"total_games"`
	TotalMoves   int     `json:"total_moves"`
	Blunders     int     `json:"blunders"`
	Mistakes     int     `json:"mistakes"`
	Inaccuracies int     `json:"inaccuracies"`
	GoodMoves    int     `json:"good_moves"`
	NeutralMoves int     `json:"neutral_moves"`
	Accuracy     float64 `json:"accuracy"`

	Wins    int `json:"wins"`
	Losses  int `json:"losses"`
	Draws   int `json:"draws"`
	Unknown int `json:"unknown"`

	TopOpening   *CategoryCount `json:"top_opening,omitempty"`
	TopTimeClass *CategoryCount `json:"top_time_class,omitempty"`
}
