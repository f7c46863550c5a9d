package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// Checkpoint returns the latest processed game timestamp. The second return
// is false on a first run, when no checkpoint has been written yet.
func (s *Store) Checkpoint(ctx context.Context) (int64, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("store")

	var ts int64
	err := s.db.QueryRowContext(ctx, `SELECT last_game_time FROM checkpoint WHERE id = 1`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no checkpoint yet")
		return 0, false, nil
	}
	if err != nil {
		log.Error("failed to read checkpoint: %v", err)
		return 0, false, err
	}
	log.Debug("checkpoint read: %d", ts)
	return ts, true, nil
}

// SetCheckpoint writes the latest processed game timestamp. It never moves
// the checkpoint backwards.
func (s *Store) SetCheckpoint(ctx context.Context, ts int64) error {
	log := logger.FromContext(ctx).WithPrefix("store")

	_, err := s.db.ExecContext(ctx, `
INSERT INTO checkpoint (id, last_game_time) VALUES (1, ?)
ON CONFLICT(id) DO UPDATE SET last_game_time = excluded.last_game_time
WHERE excluded.last_game_time > checkpoint.last_game_time
`, ts)
	if err != nil {
		log.Error("failed to write checkpoint: %v", err)
		return err
	}
	log.Info("checkpoint advanced to %d", ts)
	return nil
}
