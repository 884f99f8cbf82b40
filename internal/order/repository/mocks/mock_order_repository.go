package mocks

import (
	"context"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	args := m.Called(ctx)
	if tx := args.Get(0); tx != nil {
		return tx.(database.DBTX), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrderWithItems(ctx context.Context, dbops database.DBTX, order *domain.Order, items []domain.OrderItem) error {
	args := m.Called(ctx, dbops, order, items)
	if order != nil && args.Error(0) == nil {
		order.ID = "mock-order-id"
		order.Status = domain.StatusProcessing
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if oi := args.Get(0); oi != nil {
		return oi.([]domain.OrderItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetOrderItemByID(ctx context.Context, itemID string) (*domain.OrderItem, error) {
	args := m.Called(ctx, itemID)
	if oi := args.Get(0); oi != nil {
		return oi.(*domain.OrderItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatusTx(ctx context.Context, dbops database.DBTX, orderID string, from, to domain.OrderStatus) error {
	args := m.Called(ctx, dbops, orderID, from, to)
	return args.Error(0)
}

func (m *MockOrderRepository) InsertStatusHistory(ctx context.Context, dbops database.DBTX, orderID string, previous, next domain.OrderStatus) error {
	args := m.Called(ctx, dbops, orderID, previous, next)
	return args.Error(0)
}

func (m *MockOrderRepository) IncrementRefundedQuantity(ctx context.Context, dbops database.DBTX, orderID, itemID string, qty int) error {
	args := m.Called(ctx, dbops, orderID, itemID, qty)
	return args.Error(0)
}

func (m *MockOrderRepository) AllItemsFullyRefunded(ctx context.Context, dbops database.DBTX, orderID string) (bool, error) {
	args := m.Called(ctx, dbops, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) GetUnpaidOrdersOlderThan(ctx context.Context, age time.Duration) ([]domain.Order, error) {
	args := m.Called(ctx, age)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}
