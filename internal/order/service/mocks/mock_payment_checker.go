package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPaymentChecker struct {
	mock.Mock
}

func (m *MockPaymentChecker) TransactionExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}
