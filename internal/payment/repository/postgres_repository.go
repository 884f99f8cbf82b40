package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/payment/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

// ErrTransactionExists: guard satu-transaction-per-order menolak insert kedua.
var ErrTransactionExists = errors.New("transaction already exists for order")

type TransactionRepository interface {
	BeginTx(ctx context.Context) (database.DBTX, error)
	// TransactionExistsForOrder adalah pemeriksaan idempotency fast-path;
	// guard sesungguhnya ada di insert kondisional CreateTransaction.
	TransactionExistsForOrder(ctx context.Context, orderID string) (bool, error)
	// CreateTransaction gagal dengan ErrTransactionExists kalau order sudah
	// punya baris transaction; dua capture konkuren diserialisasi oleh
	// unique index order_id, maksimal satu insert yang menang.
	CreateTransaction(ctx context.Context, dbops database.DBTX, trx *domain.Transaction) error
	ListTransactionsByUserID(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type postgresTransactionRepository struct {
	db *sql.DB
}

func NewPostgresTransactionRepository(db *sql.DB) TransactionRepository {
	return &postgresTransactionRepository{db: db}
}

func (r *postgresTransactionRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *postgresTransactionRepository) TransactionExistsForOrder(ctx context.Context, orderID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE order_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, orderID).Scan(&exists); err != nil {
		logger.Error("TransactionExistsForOrder: query failed", err, nil)
		return false, err
	}
	return exists, nil
}

func (r *postgresTransactionRepository) CreateTransaction(ctx context.Context, dbops database.DBTX, trx *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, order_id, status, created_at)
              VALUES ($1, $2, $3, $4)
              ON CONFLICT (order_id) DO NOTHING
              RETURNING id, created_at`
	trx.CreatedAt = time.Now()
	if trx.Status == "" {
		trx.Status = domain.TransactionCompleted
	}
	err := dbops.QueryRowContext(ctx, query, trx.UserID, trx.OrderID, trx.Status, trx.CreatedAt).
		Scan(&trx.ID, &trx.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) { // DO NOTHING: baris untuk order ini sudah ada
			return ErrTransactionExists
		}
		logger.Error("CreateTransaction: failed to insert transaction", err, map[string]interface{}{"order_id": trx.OrderID})
		return err
	}
	return nil
}

func (r *postgresTransactionRepository) ListTransactionsByUserID(ctx context.Context, userID string) ([]domain.Transaction, error) {
	query := `SELECT id, user_id, order_id, status, created_at
              FROM transactions WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("ListTransactionsByUserID: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	var trxs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.OrderID, &t.Status, &t.CreatedAt); err != nil {
			logger.Error("ListTransactionsByUserID: scan failed", err, nil)
			return nil, err
		}
		trxs = append(trxs, t)
	}
	return trxs, rows.Err()
}
