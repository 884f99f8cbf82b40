package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/invoice/domain"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
)

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, invoice *domain.Invoice) error
}

type postgresInvoiceRepository struct {
	db *sql.DB
}

func NewPostgresInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &postgresInvoiceRepository{db: db}
}

func (r *postgresInvoiceRepository) CreateInvoice(ctx context.Context, invoice *domain.Invoice) error {
	query := `INSERT INTO invoices (order_id, number, created_at)
              VALUES ($1, $2, $3) RETURNING id, created_at`
	invoice.CreatedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query, invoice.OrderID, invoice.Number, invoice.CreatedAt).
		Scan(&invoice.ID, &invoice.CreatedAt)
	if err != nil {
		logger.Error("CreateInvoice: failed to insert invoice", err, map[string]interface{}{"order_id": invoice.OrderID})
		return err
	}
	return nil
}
