// Package mocks provides testify mocks for the engine's external dependencies.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/storeops/stocksync/pkg/models"
	"github.com/storeops/stocksync/pkg/persistence"
)

// MockPersistence is a mock implementation of persistence.Persistence.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) ListActiveLinks(ctx context.Context, pageSize int) ([]*models.LinkedProduct, error) {
	args := m.Called(ctx, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.LinkedProduct), args.Error(1)
}

func (m *MockPersistence) SupplierLastSync(ctx context.Context) (map[string]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]time.Time), args.Error(1)
}

func (m *MockPersistence) UpdateStorefrontState(ctx context.Context, storefrontProductID string, update persistence.StorefrontStateUpdate) error {
	args := m.Called(ctx, storefrontProductID, update)

	return args.Error(0)
}

func (m *MockPersistence) InsertSnapshots(ctx context.Context, snapshots []*models.RunSnapshot) error {
	args := m.Called(ctx, snapshots)

	return args.Error(0)
}

func (m *MockPersistence) InsertRunSummary(ctx context.Context, summary *models.RunSummary) error {
	args := m.Called(ctx, summary)

	return args.Error(0)
}

func (m *MockPersistence) RunSummaries(ctx context.Context, limit int) ([]*models.RunSummary, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.RunSummary), args.Error(1)
}

func (m *MockPersistence) RunSummaryByID(ctx context.Context, id string) (*models.RunSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.RunSummary), args.Error(1)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
