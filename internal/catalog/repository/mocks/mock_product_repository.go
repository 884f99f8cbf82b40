package mocks

import (
	"context"

	"github.com/ridloal/e-commerce-go-order-core/internal/catalog/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/stretchr/testify/mock"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*domain.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductRepository) DecreaseStock(ctx context.Context, dbops database.DBTX, productID string, qty int) error {
	args := m.Called(ctx, dbops, productID, qty)
	return args.Error(0)
}

func (m *MockProductRepository) IncreaseStock(ctx context.Context, dbops database.DBTX, productID string, qty int) error {
	args := m.Called(ctx, dbops, productID, qty)
	return args.Error(0)
}
