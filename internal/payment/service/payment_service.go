package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	cartRepo "github.com/ridloal/e-commerce-go-order-core/internal/cart/repository"
	catalogRepo "github.com/ridloal/e-commerce-go-order-core/internal/catalog/repository"
	invoiceService "github.com/ridloal/e-commerce-go-order-core/internal/invoice/service"
	orderRepo "github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/payment/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/payment/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"

	orderDomain "github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCaptureFailed     = errors.New("payment capture failed")
)

type PaymentService interface {
	// ProcessPayment adalah satu-satunya titik komitmen stok: validasi kartu
	// dulu (gagal = order dihapus), lalu decrement stok + catat transaction +
	// kosongkan cart secara atomik, terakhir invoice/email best-effort.
	ProcessPayment(ctx context.Context, orderID string, card domain.CardDetails, actor auth.Actor) (*domain.ProcessPaymentResponse, error)
	ListMyTransactions(ctx context.Context, actor auth.Actor) ([]domain.Transaction, error)
}

type paymentServiceImpl struct {
	trxRepo     repository.TransactionRepository
	orderRepo   orderRepo.OrderRepository
	productRepo catalogRepo.ProductRepository
	cartRepo    cartRepo.CartRepository
	invoiceSvc  invoiceService.InvoiceService
}

func NewPaymentService(tr repository.TransactionRepository, or orderRepo.OrderRepository, pr catalogRepo.ProductRepository, cr cartRepo.CartRepository, is invoiceService.InvoiceService) PaymentService {
	return &paymentServiceImpl{
		trxRepo:     tr,
		orderRepo:   or,
		productRepo: pr,
		cartRepo:    cr,
		invoiceSvc:  is,
	}
}

func (s *paymentServiceImpl) ProcessPayment(ctx context.Context, orderID string, card domain.CardDetails, actor auth.Actor) (*domain.ProcessPaymentResponse, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Order milik user lain disamakan dengan tidak ada.
	if !actor.IsOwner(order.UserID) {
		return nil, orderRepo.ErrOrderNotFound
	}

	// Fast-path idempotency: transaction sudah ada berarti order sudah
	// diproses, balas sukses tanpa efek apa pun. Guard finalnya adalah
	// insert kondisional di fase mutasi.
	exists, err := s.trxRepo.TransactionExistsForOrder(ctx, orderID)
	if err != nil {
		logger.Error("ProcessPayment: idempotency check failed", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if exists {
		return &domain.ProcessPaymentResponse{Message: "Order already processed."}, nil
	}

	// Validasi struktural kartu. Setiap kegagalan juga menghapus order yang
	// belum terbayar supaya attempt checkout gagal tidak menumpuk.
	if err := domain.ValidateCard(card, time.Now()); err != nil {
		if delErr := s.orderRepo.DeleteOrder(ctx, orderID); delErr != nil {
			logger.Error(fmt.Sprintf("ProcessPayment: failed to delete order %s after card validation failure", orderID), delErr, nil)
		}
		return nil, err
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		logger.Error("ProcessPayment: failed to load order items", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	// --- Fase mutasi, satu transaksi ---
	tx, err := s.trxRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("ProcessPayment: failed to begin tx", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	for _, item := range items {
		if err := s.productRepo.DecreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			tx.Rollback()
			if errors.Is(err, catalogRepo.ErrInsufficientStock) {
				// Komitmen stok gagal: hapus order, laporkan produk mana yang kurang.
				if delErr := s.orderRepo.DeleteOrder(ctx, orderID); delErr != nil {
					logger.Error(fmt.Sprintf("ProcessPayment: failed to delete order %s after stock failure", orderID), delErr, nil)
				}
				title := item.ProductID
				if product, pErr := s.productRepo.GetProductByID(ctx, item.ProductID); pErr == nil {
					title = product.Title
				}
				return nil, fmt.Errorf("%w: not enough stock for %s", ErrInsufficientStock, title)
			}
			logger.Error("ProcessPayment: stock decrement failed", err, map[string]interface{}{"product_id": item.ProductID})
			return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
		}
	}

	// Order tetap Processing setelah dibayar; tanda "paid" adalah baris
	// transaction. CAS Processing -> Processing sekaligus memastikan order
	// yang keburu dibatalkan tidak bisa di-capture.
	if err := s.orderRepo.UpdateOrderStatusTx(ctx, tx, orderID, orderDomain.StatusProcessing, orderDomain.StatusProcessing); err != nil {
		tx.Rollback()
		if errors.Is(err, orderDomain.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: order is no longer payable", ErrCaptureFailed)
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	trx := &domain.Transaction{
		UserID:  actor.UserID,
		OrderID: orderID,
		Status:  domain.TransactionCompleted,
	}
	if err := s.trxRepo.CreateTransaction(ctx, tx, trx); err != nil {
		tx.Rollback()
		// Kalah race dengan capture lain: seluruh mutasi di-rollback,
		// balas sukses idempotent seperti fast-path di atas.
		if errors.Is(err, repository.ErrTransactionExists) {
			return &domain.ProcessPaymentResponse{Message: "Order already processed."}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	// Kosongkan cart aktif user di transaksi yang sama (kalau masih ada).
	cart, err := s.cartRepo.GetActiveCartWithItems(ctx, actor.UserID)
	if err != nil && !errors.Is(err, cartRepo.ErrCartNotFound) {
		tx.Rollback()
		logger.Error("ProcessPayment: failed to load cart", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	if cart != nil {
		if err := s.cartRepo.ClearAndDeactivate(ctx, tx, cart.ID); err != nil {
			tx.Rollback()
			logger.Error("ProcessPayment: failed to clear cart", err, nil)
			return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("ProcessPayment: commit failed", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	// --- Pasca-commit, best-effort ---
	// Payment sudah final; kegagalan invoice/email hanya dicatat.
	invoiceHTML, err := s.invoiceSvc.IssueInvoice(ctx, *order, items, actor.Email)
	if err != nil {
		logger.Error(fmt.Sprintf("ProcessPayment: invoice issuance failed for order %s", orderID), err, nil)
		invoiceHTML = ""
	}

	return &domain.ProcessPaymentResponse{
		Message:     "Payment processed successfully",
		InvoiceHTML: invoiceHTML,
	}, nil
}

func (s *paymentServiceImpl) ListMyTransactions(ctx context.Context, actor auth.Actor) ([]domain.Transaction, error) {
	return s.trxRepo.ListTransactionsByUserID(ctx, actor.UserID)
}
