package store

import (
	"context"
	"database/sql"

	"github.com/1Levick3/Analyser-chess/internal/logger"
)

type txExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func tx(ctx context.Context, db *sql.DB, fn func(txExecer) error) error {
	log := logger.FromContext(ctx).WithPrefix("store")
	txn, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(txn); err != nil {
		_ = txn.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := txn.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}
