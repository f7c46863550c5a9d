package store

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/1Levick3/Analyser-chess/internal/logger"
	"github.com/1Levick3/Analyser-chess/internal/models"
	"github.com/1Levick3/Analyser-chess/internal/pgn"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// GameFilter narrows ListGames. Zero values mean "no filter".
type GameFilter struct {
	TimeClass   string
	OpeningName string
	Opponent    string
	Limit       int
	Offset      int
}

// SaveResults upserts one run's per-game summaries. Re-running a batch after
// a failed delivery overwrites rather than duplicates, keyed by game ID.
func (s *Store) SaveResults(ctx context.Context, results []*models.GameResult) error {
	log := logger.FromContext(ctx).WithPrefix("store")

	return tx(ctx, s.db, func(txn txExecer) error {
		for _, r := range results {
			_, err := txn.ExecContext(ctx, `
INSERT INTO game_results (
    game_id, url, end_time, time_class, played_as, opponent, result,
    player_rating, opponent_rating, eco_code, opening_name,
    blunders, mistakes, inaccuracies, good_moves, neutral_moves, tracked_moves
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(game_id) DO UPDATE SET
    blunders = excluded.blunders,
    mistakes = excluded.mistakes,
    inaccuracies = excluded.inaccuracies,
    good_moves = excluded.good_moves,
    neutral_moves = excluded.neutral_moves,
    tracked_moves = excluded.tracked_moves,
    eco_code = excluded.eco_code,
    opening_name = excluded.opening_name
`,
				pgn.ExtractGameID(r.URL), r.URL, r.EndTime, r.TimeClass, r.PlayedAs, r.Opponent, r.Result,
				r.PlayerRating, r.OpponentRating, r.ECOCode, r.OpeningName,
				r.Blunders, r.Mistakes, r.Inaccuracies, r.GoodMoves, r.NeutralMoves, r.TrackedMoves)
			if err != nil {
				log.Error("failed to save result for %s: %v", r.URL, err)
				return err
			}
		}
		log.Info("saved %d game results", len(results))
		return nil
	})
}

// ListGames returns stored per-game summaries, newest first.
func (s *Store) ListGames(ctx context.Context, filter GameFilter) ([]models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("store")
	log.Debug("listing games: time_class=%s, opening=%s, opponent=%s",
		filter.TimeClass, filter.OpeningName, filter.Opponent)

	query := sqlBuilder.Select(
		"url", "end_time", "time_class", "played_as", "opponent", "result",
		"player_rating", "opponent_rating", "eco_code", "opening_name",
		"blunders", "mistakes", "inaccuracies", "good_moves", "neutral_moves", "tracked_moves",
	).From("game_results")

	// Dynamic WHERE clauses
	if filter.TimeClass != "" {
		query = query.Where(squirrel.Eq{"time_class": filter.TimeClass})
	}
	if filter.OpeningName != "" {
		query = query.Where(squirrel.Eq{"opening_name": filter.OpeningName})
	}
	if filter.Opponent != "" {
		query = query.Where(squirrel.Eq{"opponent": filter.Opponent})
	}

	query = query.OrderBy("end_time DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.GameResult
	for rows.Next() {
		var r models.GameResult
		if err := rows.Scan(
			&r.URL, &r.EndTime, &r.TimeClass, &r.PlayedAs, &r.Opponent, &r.Result,
			&r.PlayerRating, &r.OpponentRating, &r.ECOCode, &r.OpeningName,
			&r.Blunders, &r.Mistakes, &r.Inaccuracies, &r.GoodMoves, &r.NeutralMoves, &r.TrackedMoves,
		); err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
