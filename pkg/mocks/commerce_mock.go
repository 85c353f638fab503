package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/storeops/stocksync/pkg/commerce"
)

// MockProductUpdater is a mock implementation of commerce.ProductUpdater.
type MockProductUpdater struct {
	mock.Mock
}

func (m *MockProductUpdater) UpdateProduct(ctx context.Context, productID int64, update commerce.ProductUpdate) error {
	args := m.Called(ctx, productID, update)

	return args.Error(0)
}
