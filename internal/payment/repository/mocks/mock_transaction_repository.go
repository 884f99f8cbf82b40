package mocks

import (
	"context"

	"github.com/ridloal/e-commerce-go-order-core/internal/payment/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/stretchr/testify/mock"
)

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTransactionRepository) TransactionExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, dbops database.DBTX, trx *domain.Transaction) error {
	args := m.Called(ctx, dbops, trx)
	if trx != nil && args.Error(0) == nil {
		trx.ID = "mock-transaction-id"
	}
	return args.Error(0)
}

func (m *MockTransactionRepository) ListTransactionsByUserID(ctx context.Context, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if t := args.Get(0); t != nil {
		return t.([]domain.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}
