package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	cartDomain "github.com/ridloal/e-commerce-go-order-core/internal/cart/domain"
	cartRepo "github.com/ridloal/e-commerce-go-order-core/internal/cart/repository"
	cartMocks "github.com/ridloal/e-commerce-go-order-core/internal/cart/repository/mocks"
	catalogDomain "github.com/ridloal/e-commerce-go-order-core/internal/catalog/domain"
	catalogRepo "github.com/ridloal/e-commerce-go-order-core/internal/catalog/repository"
	catalogMocks "github.com/ridloal/e-commerce-go-order-core/internal/catalog/repository/mocks"
	invoiceMocks "github.com/ridloal/e-commerce-go-order-core/internal/invoice/service/mocks"
	orderDomain "github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	orderRepo "github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	orderMocks "github.com/ridloal/e-commerce-go-order-core/internal/order/repository/mocks"
	"github.com/ridloal/e-commerce-go-order-core/internal/payment/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/payment/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/payment/repository/mocks"
	dbMocks "github.com/ridloal/e-commerce-go-order-core/internal/platform/database/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type paymentServiceFixture struct {
	svc             PaymentService
	mockTrxRepo     *mocks.MockTransactionRepository
	mockOrderRepo   *orderMocks.MockOrderRepository
	mockProductRepo *catalogMocks.MockProductRepository
	mockCartRepo    *cartMocks.MockCartRepository
	mockInvoiceSvc  *invoiceMocks.MockInvoiceService
}

func newPaymentServiceFixture() *paymentServiceFixture {
	f := &paymentServiceFixture{
		mockTrxRepo:     new(mocks.MockTransactionRepository),
		mockOrderRepo:   new(orderMocks.MockOrderRepository),
		mockProductRepo: new(catalogMocks.MockProductRepository),
		mockCartRepo:    new(cartMocks.MockCartRepository),
		mockInvoiceSvc:  new(invoiceMocks.MockInvoiceService),
	}
	f.svc = NewPaymentService(f.mockTrxRepo, f.mockOrderRepo, f.mockProductRepo, f.mockCartRepo, f.mockInvoiceSvc)
	return f
}

func TestPaymentService_ProcessPayment(t *testing.T) {
	ctx := context.TODO()
	actor := auth.Actor{UserID: "user123", Email: "user@example.com", Roles: []auth.Role{auth.RoleCustomer}}
	validCard := domain.CardDetails{CardNumber: "4111111111111111", Expiry: "12/99", CVV: "123"}

	order := func() *orderDomain.Order {
		return &orderDomain.Order{ID: "order1", UserID: "user123", Status: orderDomain.StatusProcessing}
	}
	items := []orderDomain.OrderItem{
		{ID: "oi1", OrderID: "order1", ProductID: "prod1", Quantity: 2},
	}

	t.Run("Successful capture commits stock, transaction and cart atomically", func(t *testing.T) {
		f := newPaymentServiceFixture()
		mockTx := new(dbMocks.MockDBTX)
		userID := "user123"

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("GetOrderItemsByOrderID", ctx, "order1").Return(items, nil).Once()
		f.mockTrxRepo.On("BeginTx", ctx).Return(mockTx, nil).Once()
		f.mockProductRepo.On("DecreaseStock", ctx, mockTx, "prod1", 2).Return(nil).Once()
		f.mockOrderRepo.On("UpdateOrderStatusTx", ctx, mockTx, "order1", orderDomain.StatusProcessing, orderDomain.StatusProcessing).Return(nil).Once()
		f.mockTrxRepo.On("CreateTransaction", ctx, mockTx, mock.AnythingOfType("*domain.Transaction")).Return(nil).Once()
		f.mockCartRepo.On("GetActiveCartWithItems", ctx, "user123").Return(&cartDomain.Cart{ID: "cart1", UserID: &userID, IsActive: true}, nil).Once()
		f.mockCartRepo.On("ClearAndDeactivate", ctx, mockTx, "cart1").Return(nil).Once()
		mockTx.On("Commit").Return(nil).Once()
		f.mockInvoiceSvc.On("IssueInvoice", ctx, mock.AnythingOfType("domain.Order"), items, "user@example.com").Return("<html>invoice</html>", nil).Once()

		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, actor)

		assert.NoError(t, err)
		assert.Equal(t, "Payment processed successfully", resp.Message)
		assert.Equal(t, "<html>invoice</html>", resp.InvoiceHTML)
		f.mockTrxRepo.AssertExpectations(t)
		f.mockProductRepo.AssertExpectations(t)
		f.mockCartRepo.AssertExpectations(t)
		mockTx.AssertExpectations(t)
	})

	t.Run("Second attempt is a no-op success", func(t *testing.T) {
		f := newPaymentServiceFixture()

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(true, nil).Once()

		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, actor)

		assert.NoError(t, err)
		assert.Equal(t, "Order already processed.", resp.Message)
		f.mockTrxRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
		f.mockProductRepo.AssertNotCalled(t, "DecreaseStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.mockOrderRepo.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
	})

	t.Run("Card validation failure deletes the unpaid order", func(t *testing.T) {
		f := newPaymentServiceFixture()

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("DeleteOrder", ctx, "order1").Return(nil).Once()

		badCard := validCard
		badCard.CVV = "12"
		resp, err := f.svc.ProcessPayment(ctx, "order1", badCard, actor)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrInvalidCVV)
		f.mockOrderRepo.AssertExpectations(t)
		f.mockTrxRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	})

	t.Run("Expired card deletes the unpaid order", func(t *testing.T) {
		f := newPaymentServiceFixture()

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("DeleteOrder", ctx, "order1").Return(nil).Once()

		expiredCard := validCard
		expiredCard.Expiry = "01/20"
		resp, err := f.svc.ProcessPayment(ctx, "order1", expiredCard, actor)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, domain.ErrCardExpired)
		f.mockOrderRepo.AssertExpectations(t)
	})

	t.Run("Stock shortfall at capture rolls back and deletes the order", func(t *testing.T) {
		f := newPaymentServiceFixture()
		mockTx := new(dbMocks.MockDBTX)

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("GetOrderItemsByOrderID", ctx, "order1").Return(items, nil).Once()
		f.mockTrxRepo.On("BeginTx", ctx).Return(mockTx, nil).Once()
		f.mockProductRepo.On("DecreaseStock", ctx, mockTx, "prod1", 2).Return(catalogRepo.ErrInsufficientStock).Once()
		mockTx.On("Rollback").Return(nil).Once()
		f.mockOrderRepo.On("DeleteOrder", ctx, "order1").Return(nil).Once()
		f.mockProductRepo.On("GetProductByID", ctx, "prod1").Return(&catalogDomain.Product{ID: "prod1", Title: "Buku Go"}, nil).Once()

		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, actor)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Contains(t, err.Error(), "Buku Go")
		mockTx.AssertExpectations(t)
		mockTx.AssertNotCalled(t, "Commit")
		f.mockTrxRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Losing a capture race rolls back to a no-op success", func(t *testing.T) {
		f := newPaymentServiceFixture()
		mockTx := new(dbMocks.MockDBTX)

		// Capture lain commit lebih dulu setelah fast-path check di sini
		// sudah lewat: insert kondisionalnya yang menolak duplikatnya.
		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("GetOrderItemsByOrderID", ctx, "order1").Return(items, nil).Once()
		f.mockTrxRepo.On("BeginTx", ctx).Return(mockTx, nil).Once()
		f.mockProductRepo.On("DecreaseStock", ctx, mockTx, "prod1", 2).Return(nil).Once()
		f.mockOrderRepo.On("UpdateOrderStatusTx", ctx, mockTx, "order1", orderDomain.StatusProcessing, orderDomain.StatusProcessing).Return(nil).Once()
		f.mockTrxRepo.On("CreateTransaction", ctx, mockTx, mock.AnythingOfType("*domain.Transaction")).Return(repository.ErrTransactionExists).Once()
		mockTx.On("Rollback").Return(nil).Once()

		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, actor)

		assert.NoError(t, err)
		assert.Equal(t, "Order already processed.", resp.Message)
		// Decrement stok ikut ter-rollback; tidak ada commit dan tidak ada invoice.
		mockTx.AssertExpectations(t)
		mockTx.AssertNotCalled(t, "Commit")
		f.mockInvoiceSvc.AssertNotCalled(t, "IssueInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.mockOrderRepo.AssertNotCalled(t, "DeleteOrder", mock.Anything, mock.Anything)
	})

	t.Run("Capture of a cancelled order fails at the status guard", func(t *testing.T) {
		f := newPaymentServiceFixture()
		mockTx := new(dbMocks.MockDBTX)

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("GetOrderItemsByOrderID", ctx, "order1").Return(items, nil).Once()
		f.mockTrxRepo.On("BeginTx", ctx).Return(mockTx, nil).Once()
		f.mockProductRepo.On("DecreaseStock", ctx, mockTx, "prod1", 2).Return(nil).Once()
		f.mockOrderRepo.On("UpdateOrderStatusTx", ctx, mockTx, "order1", orderDomain.StatusProcessing, orderDomain.StatusProcessing).
			Return(fmt.Errorf("%w: order order1 is no longer Processing", orderDomain.ErrInvalidTransition)).Once()
		mockTx.On("Rollback").Return(nil).Once()

		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, actor)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrCaptureFailed)
		mockTx.AssertExpectations(t)
		mockTx.AssertNotCalled(t, "Commit")
		f.mockTrxRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Someone else's order looks like not found", func(t *testing.T) {
		f := newPaymentServiceFixture()

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()

		stranger := auth.Actor{UserID: "user999", Roles: []auth.Role{auth.RoleCustomer}}
		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, stranger)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, orderRepo.ErrOrderNotFound)
	})

	t.Run("No active cart is fine, payment still commits", func(t *testing.T) {
		f := newPaymentServiceFixture()
		mockTx := new(dbMocks.MockDBTX)

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("GetOrderItemsByOrderID", ctx, "order1").Return(items, nil).Once()
		f.mockTrxRepo.On("BeginTx", ctx).Return(mockTx, nil).Once()
		f.mockProductRepo.On("DecreaseStock", ctx, mockTx, "prod1", 2).Return(nil).Once()
		f.mockOrderRepo.On("UpdateOrderStatusTx", ctx, mockTx, "order1", orderDomain.StatusProcessing, orderDomain.StatusProcessing).Return(nil).Once()
		f.mockTrxRepo.On("CreateTransaction", ctx, mockTx, mock.AnythingOfType("*domain.Transaction")).Return(nil).Once()
		f.mockCartRepo.On("GetActiveCartWithItems", ctx, "user123").Return(nil, cartRepo.ErrCartNotFound).Once()
		mockTx.On("Commit").Return(nil).Once()
		f.mockInvoiceSvc.On("IssueInvoice", ctx, mock.AnythingOfType("domain.Order"), items, "user@example.com").Return("", nil).Once()

		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, actor)

		assert.NoError(t, err)
		assert.Equal(t, "Payment processed successfully", resp.Message)
		f.mockCartRepo.AssertNotCalled(t, "ClearAndDeactivate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Invoice failure after commit does not fail the payment", func(t *testing.T) {
		f := newPaymentServiceFixture()
		mockTx := new(dbMocks.MockDBTX)
		userID := "user123"

		f.mockOrderRepo.On("GetOrderByID", ctx, "order1").Return(order(), nil).Once()
		f.mockTrxRepo.On("TransactionExistsForOrder", ctx, "order1").Return(false, nil).Once()
		f.mockOrderRepo.On("GetOrderItemsByOrderID", ctx, "order1").Return(items, nil).Once()
		f.mockTrxRepo.On("BeginTx", ctx).Return(mockTx, nil).Once()
		f.mockProductRepo.On("DecreaseStock", ctx, mockTx, "prod1", 2).Return(nil).Once()
		f.mockOrderRepo.On("UpdateOrderStatusTx", ctx, mockTx, "order1", orderDomain.StatusProcessing, orderDomain.StatusProcessing).Return(nil).Once()
		f.mockTrxRepo.On("CreateTransaction", ctx, mockTx, mock.AnythingOfType("*domain.Transaction")).Return(nil).Once()
		f.mockCartRepo.On("GetActiveCartWithItems", ctx, "user123").Return(&cartDomain.Cart{ID: "cart1", UserID: &userID, IsActive: true}, nil).Once()
		f.mockCartRepo.On("ClearAndDeactivate", ctx, mockTx, "cart1").Return(nil).Once()
		mockTx.On("Commit").Return(nil).Once()
		f.mockInvoiceSvc.On("IssueInvoice", ctx, mock.AnythingOfType("domain.Order"), items, "user@example.com").Return("", errors.New("render failed")).Once()

		resp, err := f.svc.ProcessPayment(ctx, "order1", validCard, actor)

		assert.NoError(t, err)
		assert.Equal(t, "Payment processed successfully", resp.Message)
		assert.Empty(t, resp.InvoiceHTML)
	})
}

func TestPaymentService_ListMyTransactions(t *testing.T) {
	ctx := context.TODO()
	f := newPaymentServiceFixture()
	actor := auth.Actor{UserID: "user123"}

	expected := []domain.Transaction{{ID: "trx1", UserID: "user123", OrderID: "order1"}}
	f.mockTrxRepo.On("ListTransactionsByUserID", ctx, "user123").Return(expected, nil).Once()

	trxs, err := f.svc.ListMyTransactions(ctx, actor)

	assert.NoError(t, err)
	assert.Equal(t, expected, trxs)
}
