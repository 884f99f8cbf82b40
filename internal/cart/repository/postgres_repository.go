package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ridloal/e-commerce-go-order-core/internal/cart/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

var ErrCartNotFound = errors.New("active cart not found")

type CartRepository interface {
	GetActiveCartWithItems(ctx context.Context, userID string) (*domain.Cart, error)
	// ClearAndDeactivate menghapus semua item lalu menonaktifkan cart,
	// dipanggil di dalam transaksi placement/capture.
	ClearAndDeactivate(ctx context.Context, dbops database.DBTX, cartID string) error
}

type postgresCartRepository struct {
	db *sql.DB
}

func NewPostgresCartRepository(db *sql.DB) CartRepository {
	return &postgresCartRepository{db: db}
}

func (r *postgresCartRepository) GetActiveCartWithItems(ctx context.Context, userID string) (*domain.Cart, error) {
	cartQuery := `SELECT id, user_id, session_key, is_active, created_at, updated_at
                  FROM carts WHERE user_id = $1 AND is_active = TRUE`
	var c domain.Cart
	var cartUserID, sessionKey sql.NullString
	err := r.db.QueryRowContext(ctx, cartQuery, userID).Scan(
		&c.ID, &cartUserID, &sessionKey, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		logger.Error("GetActiveCartWithItems: cart query failed", err, nil)
		return nil, err
	}
	if cartUserID.Valid {
		c.UserID = &cartUserID.String
	}
	if sessionKey.Valid {
		c.SessionKey = &sessionKey.String
	}

	itemQuery := `SELECT id, cart_id, product_id, quantity FROM cart_items WHERE cart_id = $1`
	rows, err := r.db.QueryContext(ctx, itemQuery, c.ID)
	if err != nil {
		logger.Error("GetActiveCartWithItems: items query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity); err != nil {
			logger.Error("GetActiveCartWithItems: item scan failed", err, nil)
			return nil, err
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresCartRepository) ClearAndDeactivate(ctx context.Context, dbops database.DBTX, cartID string) error {
	if _, err := dbops.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		logger.Error("ClearAndDeactivate: delete items failed", err, nil)
		return err
	}
	res, err := dbops.ExecContext(ctx, `UPDATE carts SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, cartID)
	if err != nil {
		logger.Error("ClearAndDeactivate: deactivate failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrCartNotFound
	}
	return nil
}
