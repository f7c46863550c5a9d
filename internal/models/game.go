package models

// PlayerInfo holds one side's header data as reported by the game source.
type PlayerInfo struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
}

// GameRecord is one finished game as retrieved from the game source.
// Immutable once fetched. EndTime is a unix timestamp and is always positive
// for games that passed the source-side filters.
type GameRecord struct {
	URL       string     `json:"url"`
	PGN       string     `json:"pgn"`
	TimeClass string     `json:"time_class"`
	EndTime   int64      `json:"end_time"`
	White     PlayerInfo `json:"white"`
	Black     PlayerInfo `json:"black"`
}

// GameResult is one game's full analysis: the source fields carried through,
// the ordered per-ply classifications, and the tracked player's tier tally.
// The five tier counts always sum to TrackedMoves.
type GameResult struct {
	URL            string               `json:"url"`
	EndTime        int64                `json:"end_time"`
	TimeClass      string               `json:"time_class"`
	PlayedAs       string               `json:"played_as"`
	Opponent       string               `json:"opponent"`
	Result         string               `json:"result"`
	PlayerRating   int                  `json:"player_rating"`
	OpponentRating int                  `json:"opponent_rating"`
	ECOCode        string               `json:"eco_code"`
	OpeningName    string               `json:"opening_name"`
	Moves          []MoveClassification `json:"moves"`
	Blunders       int                  `json:"blunders"`
	Mistakes       int                  `json:"mistakes"`
	Inaccuracies   int                  `json:"inaccuracies"`
	GoodMoves      int                  `json:"good_moves"`
	NeutralMoves   int                  `json:"neutral_moves"`
	TrackedMoves   int                  `json:"tracked_moves"`
}

// PliesFor returns the ply numbers of the tracked player's moves in the
// given tier, in move order.
func (r *GameResult) PliesFor(tier string) []int {
	var plies []int
	for _, m := range r.Moves {
		if m.Tier == tier {
			plies = append(plies, m.Ply)
		}
	}
	return plies
}
