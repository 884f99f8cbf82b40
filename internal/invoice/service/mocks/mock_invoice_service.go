package mocks

import (
	"context"

	orderDomain "github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) IssueInvoice(ctx context.Context, order orderDomain.Order, items []orderDomain.OrderItem, toEmail string) (string, error) {
	args := m.Called(ctx, order, items, toEmail)
	return args.String(0), args.Error(1)
}
