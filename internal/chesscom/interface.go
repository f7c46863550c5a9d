package chesscom

import (
	"context"

	"github.com/1Levick3/Analyser-chess/internal/models"
)

// GameSource is the boundary the batch runner consumes. It enables mock
// implementations in tests.
type GameSource interface {
	FetchGamesSince(ctx context.Context, username string, since int64) ([]models.GameRecord, error)
}

// Ensure Client implements the interface
var _ GameSource = (*Client)(nil)
