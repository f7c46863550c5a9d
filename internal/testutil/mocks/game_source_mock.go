package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/1Levick3/Analyser-chess/internal/models"
)

// MockGameSource is a mock implementation of chesscom.GameSource
type MockGameSource struct {
	mock.Mock
}

func (m *MockGameSource) FetchGamesSince(ctx context.Context, username string, since int64) ([]models.GameRecord, error) {
	args := m.Called(ctx, username, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GameRecord), args.Error(1)
}
