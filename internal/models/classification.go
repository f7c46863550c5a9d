package models

// Quality tiers assigned to the tracked player's moves. Opponent moves are
// recorded with TierOpponent and never tallied.
const (
	TierBlunder    = "blunder"
	TierMistake    = "mistake"
	TierInaccuracy = "inaccuracy"
	TierGood       = "good"
	TierNeutral    = "neutral"
	TierOpponent   = "opponent"
)

// MoveClassification is one ply's outcome. Ply is 1-based. Delta is the
// evaluation change in centipawns from the mover's own perspective, so a
// negative delta always means the mover made their position worse.
type MoveClassification struct {
	Ply   int     `json:"ply"`
	Side  string  `json:"side"`
	Tier  string  `json:"tier"`
	Delta float64 `json:"delta"`
}
