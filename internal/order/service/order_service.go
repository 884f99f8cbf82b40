package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/auth"
	cartRepo "github.com/ridloal/e-commerce-go-order-core/internal/cart/repository"
	catalogRepo "github.com/ridloal/e-commerce-go-order-core/internal/catalog/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/order/repository"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrForbidden           = errors.New("actor is not allowed to perform this operation")
	ErrOrderCreationFailed = errors.New("order creation failed")
)

type OrderService interface {
	// PlaceOrder membentuk order dari cart aktif milik actor. Stok hanya
	// di-pre-check di sini; komitmen stok sesungguhnya terjadi saat payment capture.
	PlaceOrder(ctx context.Context, actor auth.Actor) (*domain.PlaceOrderResponse, error)
	TransitionStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus, actor auth.Actor) (*domain.Order, error)
	ListMyOrders(ctx context.Context, actor auth.Actor) ([]domain.Order, error)
	GetOrderItems(ctx context.Context, orderID string, actor auth.Actor) ([]domain.OrderItem, error)
	ReapUnpaidOrders(ctx context.Context) // Fungsi untuk scheduler
	StopScheduler()
}

// PaymentChecker menjawab apakah sebuah order sudah punya baris transaction,
// yaitu apakah stoknya sudah pernah dikomit.
type PaymentChecker interface {
	TransactionExistsForOrder(ctx context.Context, orderID string) (bool, error)
}

type orderServiceImpl struct {
	orderRepo          repository.OrderRepository
	cartRepo           cartRepo.CartRepository
	productRepo        catalogRepo.ProductRepository
	payments           PaymentChecker
	scheduler          *cron.Cron
	unpaidOrderTimeout time.Duration
}

func NewOrderService(or repository.OrderRepository, cr cartRepo.CartRepository, pr catalogRepo.ProductRepository, payments PaymentChecker, unpaidOrderTimeout time.Duration) OrderService {
	s := &orderServiceImpl{
		orderRepo:          or,
		cartRepo:           cr,
		productRepo:        pr,
		payments:           payments,
		scheduler:          cron.New(),
		unpaidOrderTimeout: unpaidOrderTimeout,
	}
	s.initScheduler()
	return s
}

func (s *orderServiceImpl) initScheduler() {
	spec := "*/5 * * * *" // Setiap 5 menit
	s.scheduler.AddFunc(spec, func() {
		// Gunakan context.Background() karena ini background job
		s.ReapUnpaidOrders(context.Background())
	})
	s.scheduler.Start()
	logger.Info(fmt.Sprintf("Unpaid order reaper initialized with spec '%s' and timeout %v", spec, s.unpaidOrderTimeout))
}

func (s *orderServiceImpl) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// ReapUnpaidOrders menghapus order Processing tanpa transaction yang lebih tua
// dari timeout. Tidak ada restock: stok belum pernah dikomit untuk order
// yang belum dibayar.
func (s *orderServiceImpl) ReapUnpaidOrders(ctx context.Context) {
	orders, err := s.orderRepo.GetUnpaidOrdersOlderThan(ctx, s.unpaidOrderTimeout)
	if err != nil {
		logger.Error("ReapUnpaidOrders: failed to get unpaid orders", err, nil)
		return
	}
	if len(orders) == 0 {
		return
	}

	logger.Info(fmt.Sprintf("ReapUnpaidOrders: found %d stale unpaid orders", len(orders)))
	for _, order := range orders {
		if err := s.orderRepo.DeleteOrder(ctx, order.ID); err != nil {
			logger.Error(fmt.Sprintf("ReapUnpaidOrders: failed to delete order %s", order.ID), err, nil)
			continue
		}
		logger.Info(fmt.Sprintf("ReapUnpaidOrders: deleted stale unpaid order %s", order.ID))
	}
}

func (s *orderServiceImpl) PlaceOrder(ctx context.Context, actor auth.Actor) (*domain.PlaceOrderResponse, error) {
	cart, err := s.cartRepo.GetActiveCartWithItems(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, cartRepo.ErrCartNotFound) {
			return nil, ErrCartEmpty
		}
		logger.Error("PlaceOrder: failed to load cart", err, nil)
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}

	// Pre-check stok + bekukan harga. Belum ada mutasi apa pun di tahap ini;
	// kalau ada line yang kurang stok, seluruh operasi batal tanpa side effect.
	now := time.Now()
	total := decimal.Zero
	orderItems := make([]domain.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		product, err := s.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			logger.Error("PlaceOrder: failed to load product", err, map[string]interface{}{"product_id": item.ProductID})
			return nil, err
		}
		if item.Quantity > product.Stock {
			return nil, fmt.Errorf("%w: not enough stock for %s", ErrInsufficientStock, product.Title)
		}

		unitPrice := product.CurrentPrice(now)
		total = total.Add(unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		orderItems = append(orderItems, domain.OrderItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: unitPrice,
			DiscountRate:    product.DiscountRate,
		})
	}

	newOrder := &domain.Order{
		UserID:     actor.UserID,
		TotalPrice: total,
		Status:     domain.StatusProcessing,
	}

	// Order + items + history + pengosongan cart dalam satu transaksi.
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("PlaceOrder: failed to begin tx", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}

	if err := s.orderRepo.CreateOrderWithItems(ctx, tx, newOrder, orderItems); err != nil {
		tx.Rollback()
		logger.Error("PlaceOrder: failed to save order", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}
	if err := s.cartRepo.ClearAndDeactivate(ctx, tx, cart.ID); err != nil {
		tx.Rollback()
		logger.Error("PlaceOrder: failed to clear cart", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}
	if err := tx.Commit(); err != nil {
		logger.Error("PlaceOrder: commit failed", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreationFailed, err)
	}

	return &domain.PlaceOrderResponse{Order: *newOrder}, nil
}

func (s *orderServiceImpl) TransitionStatus(ctx context.Context, orderID string, newStatus domain.OrderStatus, actor auth.Actor) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// Role product manager boleh semua transisi legal; customer hanya boleh
	// membatalkan order miliknya sendiri selama masih Processing.
	if !actor.IsProductManager() {
		selfCancel := actor.IsOwner(order.UserID) &&
			newStatus == domain.StatusCancelled &&
			order.Status == domain.StatusProcessing
		if !selfCancel {
			return nil, ErrForbidden
		}
	}

	if err := domain.ValidateTransition(order.Status, newStatus); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		logger.Error("TransitionStatus: failed to begin tx", err, nil)
		return nil, err
	}

	// CAS status duluan: dari dua transisi konkuren atas snapshot yang sama,
	// hanya satu yang lolos, sisanya gagal dengan ErrInvalidTransition.
	// Side effect restock di bawah karena itu berjalan paling banyak sekali.
	if err := s.orderRepo.UpdateOrderStatusTx(ctx, tx, orderID, order.Status, newStatus); err != nil {
		tx.Rollback()
		return nil, err
	}

	if newStatus == domain.StatusCancelled {
		// Restock hanya kalau stok pernah dikomit, yaitu order sudah dibayar.
		// Pembacaan setelah CAS: capture konkuren yang kalah row lock pasti
		// gagal di CAS-nya sendiri dan tidak akan pernah commit.
		paid, err := s.payments.TransactionExistsForOrder(ctx, orderID)
		if err != nil {
			tx.Rollback()
			logger.Error("TransitionStatus: failed to check payment state", err, nil)
			return nil, err
		}
		if paid {
			items, err := s.orderRepo.GetOrderItemsByOrderID(ctx, orderID)
			if err != nil {
				tx.Rollback()
				logger.Error("TransitionStatus: failed to load items for restock", err, nil)
				return nil, err
			}
			for _, item := range items {
				if err := s.productRepo.IncreaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
					tx.Rollback()
					logger.Error("TransitionStatus: restock failed", err, map[string]interface{}{"product_id": item.ProductID})
					return nil, err
				}
			}
		}
	}

	if err := s.orderRepo.InsertStatusHistory(ctx, tx, orderID, order.Status, newStatus); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		logger.Error("TransitionStatus: commit failed", err, nil)
		return nil, err
	}

	order.Status = newStatus
	return order, nil
}

func (s *orderServiceImpl) ListMyOrders(ctx context.Context, actor auth.Actor) ([]domain.Order, error) {
	return s.orderRepo.ListOrdersByUserID(ctx, actor.UserID)
}

func (s *orderServiceImpl) GetOrderItems(ctx context.Context, orderID string, actor auth.Actor) ([]domain.OrderItem, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	// Unknown dan unauthorized sama-sama 404 supaya keberadaan order
	// milik user lain tidak bocor.
	if !actor.IsOwner(order.UserID) && !actor.IsProductManager() && !actor.IsSalesManager() {
		return nil, repository.ErrOrderNotFound
	}
	return s.orderRepo.GetOrderItemsByOrderID(ctx, orderID)
}
