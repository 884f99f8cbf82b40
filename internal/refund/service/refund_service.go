package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	catalogRepo "github.com/ridloal/e-commerce-go-order-core/internal/catalog/repository"
	invoiceService "github.com/ridloal/e-commerce-go-order-core/internal/invoice/service"
	orderDomain "github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	orderRepo "github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
	"github.com/ridloal/e-commerce-go-order-core/internal/refund/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/refund/repository"
	userRepo "github.com/ridloal/e-commerce-go-order-core/internal/user/repository"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotDelivered   = errors.New("order is not in Delivered status")
	ErrExceedsRefundable   = errors.New("requested quantity exceeds refundable quantity")
	ErrRefundWindowExpired = errors.New("refund window has expired")
	ErrForbidden           = errors.New("actor is not allowed to perform this operation")
	ErrRefundFailed        = errors.New("refund operation failed")
)

type RefundService interface {
	// Refund mengeksekusi refund langsung (pemilik order, status Delivered).
	Refund(ctx context.Context, orderID string, lines []domain.RefundLine, actor auth.Actor) (*domain.RefundOrderResponse, error)
	CreateRefundRequest(ctx context.Context, orderItemID string, quantity int, actor auth.Actor) (*domain.RefundRequest, error)
	ProcessRefundRequest(ctx context.Context, requestID string, decision domain.RefundRequestStatus, message string, actor auth.Actor) (*domain.RefundRequest, error)
	ListPendingRequests(ctx context.Context, actor auth.Actor) ([]domain.RefundRequest, error)
	ListMyRefunds(ctx context.Context, actor auth.Actor) ([]domain.Refund, error)
}

type refundServiceImpl struct {
	refundRepo   repository.RefundRepository
	orderRepo    orderRepo.OrderRepository
	productRepo  catalogRepo.ProductRepository
	userRepo     userRepo.UserRepository
	notifier     invoiceService.NotificationClient
	refundWindow time.Duration
}

func NewRefundService(rr repository.RefundRepository, or orderRepo.OrderRepository, pr catalogRepo.ProductRepository, ur userRepo.UserRepository, nc invoiceService.NotificationClient, refundWindow time.Duration) RefundService {
	return &refundServiceImpl{
		refundRepo:   rr,
		orderRepo:    or,
		productRepo:  pr,
		userRepo:     ur,
		notifier:     nc,
		refundWindow: refundWindow,
	}
}

// refundAmount = price_at_purchase * qty, dibulatkan 2 desimal di titik hitung.
func refundAmount(pricePerUnit decimal.Decimal, qty int) decimal.Decimal {
	return pricePerUnit.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}

// applyLineRefund mengeksekusi efek refund satu line di dalam transaksi caller:
// baris Refund, naikkan refunded_quantity (bounded), restock produk.
func (s *refundServiceImpl) applyLineRefund(ctx context.Context, tx database.DBTX, item orderDomain.OrderItem, qty int) (decimal.Decimal, error) {
	amount := refundAmount(item.PriceAtPurchase, qty)
	refund := &domain.Refund{
		OrderID:      item.OrderID,
		OrderItemID:  item.ID,
		Quantity:     qty,
		RefundAmount: amount,
	}
	if err := s.refundRepo.InsertRefund(ctx, tx, refund); err != nil {
		return decimal.Zero, err
	}
	if err := s.orderRepo.IncrementRefundedQuantity(ctx, tx, item.OrderID, item.ID, qty); err != nil {
		if errors.Is(err, orderRepo.ErrRefundedQuantityExceeded) {
			return decimal.Zero, fmt.Errorf("%w: order item %s", ErrExceedsRefundable, item.ID)
		}
		return decimal.Zero, err
	}
	if err := s.productRepo.IncreaseStock(ctx, tx, item.ProductID, qty); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// finalizeOrderStatus mem-flip order ke Refunded jika semua line sudah
// refund penuh; kalau tidak, status tetap seperti semula (partial refund).
func (s *refundServiceImpl) finalizeOrderStatus(ctx context.Context, tx database.DBTX, order *orderDomain.Order) (orderDomain.OrderStatus, error) {
	allRefunded, err := s.orderRepo.AllItemsFullyRefunded(ctx, tx, order.ID)
	if err != nil {
		return "", err
	}
	if !allRefunded {
		return order.Status, nil
	}
	if err := s.orderRepo.UpdateOrderStatusTx(ctx, tx, order.ID, order.Status, orderDomain.StatusRefunded); err != nil {
		return "", err
	}
	if err := s.orderRepo.InsertStatusHistory(ctx, tx, order.ID, order.Status, orderDomain.StatusRefunded); err != nil {
		return "", err
	}
	return orderDomain.StatusRefunded, nil
}

func (s *refundServiceImpl) Refund(ctx context.Context, orderID string, lines []domain.RefundLine, actor auth.Actor) (*domain.RefundOrderResponse, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOwner(order.UserID) {
		return nil, orderRepo.ErrOrderNotFound
	}
	if order.Status != orderDomain.StatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		logger.Error("Refund: failed to load order items", err, nil)
		return nil, err
	}
	itemsByID := make(map[string]orderDomain.OrderItem, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	// Validasi semua line dulu; satu line bermasalah membatalkan seluruh refund.
	for _, line := range lines {
		item, ok := itemsByID[line.OrderItemID]
		if !ok {
			return nil, fmt.Errorf("%w: order item %s", orderRepo.ErrOrderItemNotFound, line.OrderItemID)
		}
		if line.Quantity > item.RefundableQuantity() {
			return nil, fmt.Errorf("%w: order item %s", ErrExceedsRefundable, line.OrderItemID)
		}
	}

	tx, err := s.refundRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("Refund: failed to begin tx", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	total := decimal.Zero
	for _, line := range lines {
		item := itemsByID[line.OrderItemID]
		amount, err := s.applyLineRefund(ctx, tx, item, line.Quantity)
		if err != nil {
			tx.Rollback()
			if errors.Is(err, ErrExceedsRefundable) {
				return nil, err
			}
			logger.Error("Refund: line refund failed", err, map[string]interface{}{"order_item_id": line.OrderItemID})
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
		total = total.Add(amount)
	}

	finalStatus, err := s.finalizeOrderStatus(ctx, tx, order)
	if err != nil {
		tx.Rollback()
		logger.Error("Refund: failed to finalize order status", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Refund: commit failed", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	return &domain.RefundOrderResponse{
		RefundedAmount: total,
		OrderStatus:    string(finalStatus),
	}, nil
}

func (s *refundServiceImpl) CreateRefundRequest(ctx context.Context, orderItemID string, quantity int, actor auth.Actor) (*domain.RefundRequest, error) {
	item, err := s.orderRepo.GetOrderItemByID(ctx, orderItemID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetOrderByID(ctx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOwner(order.UserID) {
		// Item milik user lain disamakan dengan tidak ada.
		return nil, orderRepo.ErrOrderItemNotFound
	}
	if order.Status != orderDomain.StatusDelivered {
		return nil, ErrOrderNotDelivered
	}
	if quantity > item.RefundableQuantity() {
		return nil, fmt.Errorf("%w: order item %s", ErrExceedsRefundable, orderItemID)
	}
	if time.Since(order.CreatedAt) > s.refundWindow {
		return nil, ErrRefundWindowExpired
	}

	req := &domain.RefundRequest{
		OrderItemID: orderItemID,
		UserID:      actor.UserID,
		Quantity:    quantity,
	}
	if err := s.refundRepo.CreateRefundRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}
	return req, nil
}

func (s *refundServiceImpl) ProcessRefundRequest(ctx context.Context, requestID string, decision domain.RefundRequestStatus, message string, actor auth.Actor) (*domain.RefundRequest, error) {
	if !actor.IsSalesManager() {
		return nil, ErrForbidden
	}

	tx, err := s.refundRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("ProcessRefundRequest: failed to begin tx", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	req, err := s.refundRepo.ClaimPendingRequest(ctx, tx, requestID, decision, message)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if decision == domain.RequestApproved {
		item, err := s.orderRepo.GetOrderItemByID(ctx, req.OrderItemID)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
		order, err := s.orderRepo.GetOrderByID(ctx, item.OrderID)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}

		if _, err := s.applyLineRefund(ctx, tx, *item, req.Quantity); err != nil {
			tx.Rollback()
			if errors.Is(err, ErrExceedsRefundable) {
				return nil, err
			}
			logger.Error("ProcessRefundRequest: line refund failed", err, map[string]interface{}{"request_id": requestID})
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
		if _, err := s.finalizeOrderStatus(ctx, tx, order); err != nil {
			tx.Rollback()
			logger.Error("ProcessRefundRequest: failed to finalize order status", err, nil)
			return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("ProcessRefundRequest: commit failed", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	// Notifikasi ke pemohon best-effort; keputusan sudah ter-commit.
	if user, uErr := s.userRepo.GetUserByID(ctx, req.UserID); uErr == nil {
		if nErr := s.notifier.SendRefundDecisionEmail(ctx, user.Email, req.ID, string(req.Status), req.ResponseMessage); nErr != nil {
			logger.Error(fmt.Sprintf("ProcessRefundRequest: failed to email requester for request %s", req.ID), nErr, nil)
		}
	} else {
		logger.Error(fmt.Sprintf("ProcessRefundRequest: failed to load requester %s for notification", req.UserID), uErr, nil)
	}

	return req, nil
}

func (s *refundServiceImpl) ListPendingRequests(ctx context.Context, actor auth.Actor) ([]domain.RefundRequest, error) {
	if !actor.IsSalesManager() {
		return nil, ErrForbidden
	}
	return s.refundRepo.ListPendingRequests(ctx)
}

func (s *refundServiceImpl) ListMyRefunds(ctx context.Context, actor auth.Actor) ([]domain.Refund, error) {
	return s.refundRepo.ListRefundsByUserID(ctx, actor.UserID)
}
