package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDeliverer is a mock implementation of delivery.Deliverer
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockDeliverer) Deliver(ctx context.Context, document string) error {
	args := m.Called(ctx, document)
	return args.Error(0)
}
