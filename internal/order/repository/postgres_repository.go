package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/order/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	// ErrRefundedQuantityExceeded: update refunded_quantity akan melebihi quantity.
	ErrRefundedQuantityExceeded = errors.New("refunded quantity would exceed purchased quantity")
)

type OrderRepository interface {
	BeginTx(ctx context.Context) (database.DBTX, error)

	// CreateOrderWithItems menyimpan order + item + baris history pembuatan
	// di dalam transaksi milik caller (placement juga mengosongkan cart).
	CreateOrderWithItems(ctx context.Context, dbops database.DBTX, order *domain.Order, items []domain.OrderItem) error

	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	GetOrderItemByID(ctx context.Context, itemID string) (*domain.OrderItem, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error)

	// UpdateOrderStatusTx adalah UPDATE kondisional atas status lama:
	// nol baris berarti status order sudah berubah sejak dibaca (atau
	// ordernya hilang), dua transisi konkuren tidak bisa sama-sama menang.
	UpdateOrderStatusTx(ctx context.Context, dbops database.DBTX, orderID string, from, to domain.OrderStatus) error
	InsertStatusHistory(ctx context.Context, dbops database.DBTX, orderID string, previous, next domain.OrderStatus) error

	// IncrementRefundedQuantity adalah UPDATE kondisional yang menjaga
	// refunded_quantity <= quantity; nol baris berarti bound terlampaui
	// (atau item tidak ada di order tersebut).
	IncrementRefundedQuantity(ctx context.Context, dbops database.DBTX, orderID, itemID string, qty int) error
	AllItemsFullyRefunded(ctx context.Context, dbops database.DBTX, orderID string) (bool, error)

	// DeleteOrder menghapus order beserta item dan history-nya
	// (kompensasi kegagalan payment, dan reaper order tak terbayar).
	DeleteOrder(ctx context.Context, orderID string) error
	GetUnpaidOrdersOlderThan(ctx context.Context, age time.Duration) ([]domain.Order, error)
}

type postgresOrderRepository struct {
	db *sql.DB
}

func NewPostgresOrderRepository(db *sql.DB) OrderRepository {
	return &postgresOrderRepository{db: db}
}

func (r *postgresOrderRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *postgresOrderRepository) CreateOrderWithItems(ctx context.Context, dbops database.DBTX, order *domain.Order, items []domain.OrderItem) error {
	orderQuery := `INSERT INTO orders (user_id, total_price, status, created_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at, status`

	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	if order.Status == "" {
		order.Status = domain.StatusProcessing // Default status
	}

	err := dbops.QueryRowContext(ctx, orderQuery, order.UserID, order.TotalPrice, order.Status, order.CreatedAt, order.UpdatedAt).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.Status)
	if err != nil {
		logger.Error("CreateOrderWithItems: failed to insert order", err, nil)
		return err
	}

	itemStmt, err := dbops.PrepareContext(ctx, `INSERT INTO order_items (order_id, product_id, quantity, price_at_purchase, discount_rate, refunded_quantity, created_at)
                                               VALUES ($1, $2, $3, $4, $5, 0, $6) RETURNING id, created_at`)
	if err != nil {
		logger.Error("CreateOrderWithItems: failed to prepare item statement", err, nil)
		return err
	}
	defer itemStmt.Close()

	for i := range items {
		items[i].OrderID = order.ID
		items[i].CreatedAt = order.CreatedAt
		err = itemStmt.QueryRowContext(ctx, items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].PriceAtPurchase, items[i].DiscountRate, items[i].CreatedAt).
			Scan(&items[i].ID, &items[i].CreatedAt)
		if err != nil {
			logger.Error("CreateOrderWithItems: failed to insert order item", err, map[string]interface{}{"item_product_id": items[i].ProductID})
			return err
		}
	}
	order.Items = items

	// Baris history pembuatan: previous kosong -> Processing.
	return r.InsertStatusHistory(ctx, dbops, order.ID, "", order.Status)
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT id, user_id, total_price, status, created_at, updated_at FROM orders WHERE id = $1`
	var o domain.Order
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logger.Error("GetOrderByID: query failed", err, nil)
		return nil, err
	}
	return &o, nil
}

func (r *postgresOrderRepository) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, price_at_purchase, discount_rate, refunded_quantity, created_at
              FROM order_items WHERE order_id = $1`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		logger.Error("GetOrderItemsByOrderID: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var i domain.OrderItem
		if err := rows.Scan(&i.ID, &i.OrderID, &i.ProductID, &i.Quantity, &i.PriceAtPurchase, &i.DiscountRate, &i.RefundedQuantity, &i.CreatedAt); err != nil {
			logger.Error("GetOrderItemsByOrderID: scan failed", err, nil)
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *postgresOrderRepository) GetOrderItemByID(ctx context.Context, itemID string) (*domain.OrderItem, error) {
	query := `SELECT id, order_id, product_id, quantity, price_at_purchase, discount_rate, refunded_quantity, created_at
              FROM order_items WHERE id = $1`
	var i domain.OrderItem
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(
		&i.ID, &i.OrderID, &i.ProductID, &i.Quantity, &i.PriceAtPurchase, &i.DiscountRate, &i.RefundedQuantity, &i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderItemNotFound
		}
		logger.Error("GetOrderItemByID: query failed", err, nil)
		return nil, err
	}
	return &i, nil
}

func (r *postgresOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT id, user_id, total_price, status, created_at, updated_at
              FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("ListOrdersByUserID: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			logger.Error("ListOrdersByUserID: scan failed", err, nil)
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *postgresOrderRepository) UpdateOrderStatusTx(ctx context.Context, dbops database.DBTX, orderID string, from, to domain.OrderStatus) error {
	// Compare-and-swap: pengecekan status lama dan mutasi dalam satu statement,
	// pola yang sama dengan decrement stok.
	query := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	res, err := dbops.ExecContext(ctx, query, to, orderID, from)
	if err != nil {
		logger.Error("UpdateOrderStatusTx: exec failed", err, map[string]interface{}{"order_id": orderID, "new_status": to})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: order %s is no longer %s", domain.ErrInvalidTransition, orderID, from)
	}
	return nil
}

func (r *postgresOrderRepository) InsertStatusHistory(ctx context.Context, dbops database.DBTX, orderID string, previous, next domain.OrderStatus) error {
	query := `INSERT INTO order_status_history (order_id, previous_status, new_status, changed_at)
              VALUES ($1, $2, $3, NOW())`
	if _, err := dbops.ExecContext(ctx, query, orderID, previous, next); err != nil {
		logger.Error("InsertStatusHistory: exec failed", err, map[string]interface{}{"order_id": orderID})
		return err
	}
	return nil
}

func (r *postgresOrderRepository) IncrementRefundedQuantity(ctx context.Context, dbops database.DBTX, orderID, itemID string, qty int) error {
	// Bound refunded_quantity <= quantity dijaga oleh statement yang sama
	// yang melakukan mutasi; tidak ada pembacaan terpisah.
	query := `UPDATE order_items SET refunded_quantity = refunded_quantity + $1
              WHERE id = $2 AND order_id = $3 AND refunded_quantity + $1 <= quantity`
	res, err := dbops.ExecContext(ctx, query, qty, itemID, orderID)
	if err != nil {
		logger.Error("IncrementRefundedQuantity: exec failed", err, map[string]interface{}{"order_item_id": itemID})
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrRefundedQuantityExceeded
	}
	return nil
}

func (r *postgresOrderRepository) AllItemsFullyRefunded(ctx context.Context, dbops database.DBTX, orderID string) (bool, error) {
	query := `SELECT COUNT(*) FROM order_items WHERE order_id = $1 AND refunded_quantity < quantity`
	var remaining int
	if err := dbops.QueryRowContext(ctx, query, orderID).Scan(&remaining); err != nil {
		logger.Error("AllItemsFullyRefunded: query failed", err, nil)
		return false, err
	}
	return remaining == 0, nil
}

func (r *postgresOrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("DeleteOrder: failed to begin tx", err, nil)
		return err
	}
	defer tx.Rollback() // Rollback jika tidak di-commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_status_history WHERE order_id = $1`, orderID); err != nil {
		logger.Error("DeleteOrder: delete history failed", err, nil)
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		logger.Error("DeleteOrder: delete items failed", err, nil)
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		logger.Error("DeleteOrder: delete order failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}
	return tx.Commit()
}

func (r *postgresOrderRepository) GetUnpaidOrdersOlderThan(ctx context.Context, age time.Duration) ([]domain.Order, error) {
	// Order dianggap belum terbayar selama belum ada baris transaction untuknya.
	query := `SELECT o.id, o.user_id, o.total_price, o.status, o.created_at, o.updated_at
              FROM orders o
              WHERE o.status = $1 AND o.created_at < $2
                AND NOT EXISTS (SELECT 1 FROM transactions t WHERE t.order_id = o.id)
              ORDER BY o.created_at ASC`

	thresholdTime := time.Now().Add(-age)
	rows, err := r.db.QueryContext(ctx, query, domain.StatusProcessing, thresholdTime)
	if err != nil {
		logger.Error("GetUnpaidOrdersOlderThan: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			logger.Error("GetUnpaidOrdersOlderThan: scan failed", err, nil)
			continue
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
