package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// Report is a stored rendered document.
type Report struct {
	ID         int64     `json:"id"`
	Document   string    `json:"document"`
	TotalGames int       `json:"total_games"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveReport stores one run's rendered document.
func (s *Store) SaveReport(ctx context.Context, document string, totalGames int) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("store")

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (document, total_games) VALUES (?, ?)`, document, totalGames)
	if err != nil {
		log.Error("failed to save report: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	log.Info("saved report %d covering %d games", id, totalGames)
	return id, nil
}

// LatestReport returns the most recent stored report, or nil when no run has
// produced one yet.
func (s *Store) LatestReport(ctx context.Context) (*Report, error) {
	log := logger.FromContext(ctx).WithPrefix("store")

	var r Report
	err := s.db.QueryRowContext(ctx, `
SELECT id, document, total_games, created_at
FROM reports
ORDER BY id DESC
LIMIT 1
`).Scan(&r.ID, &r.Document, &r.TotalGames, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to read latest report: %v", err)
		return nil, err
	}
	return &r, nil
}
