package mocks

import (
	"context"

	"github.com/ridloal/e-commerce-go-order-core/internal/cart/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/stretchr/testify/mock"
)

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) GetActiveCartWithItems(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if c := args.Get(0); c != nil {
		return c.(*domain.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCartRepository) ClearAndDeactivate(ctx context.Context, dbops database.DBTX, cartID string) error {
	args := m.Called(ctx, dbops, cartID)
	return args.Error(0)
}
