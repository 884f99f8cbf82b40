package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq" // Untuk pq.Error
	"github.com/ridloal/e-commerce-go-order-core/internal/catalog/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductRepository adalah inventory ledger: semua mutasi stok lewat
// DecreaseStock/IncreaseStock sebagai satu statement UPDATE kondisional,
// tidak pernah read-modify-write dua langkah.
type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)

	// DecreaseStock gagal dengan ErrInsufficientStock kalau stok < qty.
	// Dua decrement konkuren atas produk yang sama diserialisasi oleh
	// statement UPDATE-nya sendiri; maksimal satu yang melihat stok cukup.
	DecreaseStock(ctx context.Context, dbops database.DBTX, productID string, qty int) error
	// IncreaseStock mengembalikan stok (restock pembatalan/refund), tidak pernah
	// gagal karena batas bawah.
	IncreaseStock(ctx context.Context, dbops database.DBTX, productID string, qty int) error
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT id, title, price, stock, discount_rate, discount_start, discount_end, created_at, updated_at
              FROM products WHERE id = $1`
	var p domain.Product
	var discountStart, discountEnd sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Price, &p.Stock, &p.DiscountRate, &discountStart, &discountEnd, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err, nil)
		return nil, err
	}
	if discountStart.Valid {
		p.DiscountStart = &discountStart.Time
	}
	if discountEnd.Valid {
		p.DiscountEnd = &discountEnd.Time
	}
	return &p, nil
}

func (r *postgresProductRepository) DecreaseStock(ctx context.Context, dbops database.DBTX, productID string, qty int) error {
	// Compare-and-decrement: pengecekan dan mutasi dalam satu statement.
	query := `UPDATE products SET stock = stock - $1, updated_at = NOW()
              WHERE id = $2 AND stock >= $1`
	res, err := dbops.ExecContext(ctx, query, qty, productID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23514" { // check_violation (stock < 0)
			logger.Error("DecreaseStock: check violation", err, nil)
			return ErrInsufficientStock
		}
		logger.Error("DecreaseStock: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		// Stok tidak cukup, atau produknya memang tidak ada.
		return ErrInsufficientStock
	}
	return nil
}

func (r *postgresProductRepository) IncreaseStock(ctx context.Context, dbops database.DBTX, productID string, qty int) error {
	query := `UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE id = $2`
	res, err := dbops.ExecContext(ctx, query, qty, productID)
	if err != nil {
		logger.Error("IncreaseStock: exec failed", err, nil)
		return err
	}
	rowsAffected, _ := res.RowsAffected()
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
