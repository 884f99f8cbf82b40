package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ridloal/e-commerce-go-order-core/internal/platform/database"
	"github.com/ridloal/e-commerce-go-order-core/internal/platform/logger"
	"github.com/ridloal/e-commerce-go-order-core/internal/refund/domain"
)

// ErrRequestNotFound juga mencakup request yang sudah diproses: claim-nya
// hanya menemukan baris yang masih Pending.
var ErrRequestNotFound = errors.New("pending refund request not found")

type RefundRepository interface {
	BeginTx(ctx context.Context) (database.DBTX, error)

	InsertRefund(ctx context.Context, dbops database.DBTX, refund *domain.Refund) error
	ListRefundsByUserID(ctx context.Context, userID string) ([]domain.Refund, error)

	CreateRefundRequest(ctx context.Context, req *domain.RefundRequest) error
	// ClaimPendingRequest mem-flip Pending -> decision dalam satu UPDATE
	// kondisional; nol baris berarti request tidak ada atau sudah diproses.
	ClaimPendingRequest(ctx context.Context, dbops database.DBTX, requestID string, decision domain.RefundRequestStatus, message string) (*domain.RefundRequest, error)
	ListPendingRequests(ctx context.Context) ([]domain.RefundRequest, error)
}

type postgresRefundRepository struct {
	db *sql.DB
}

func NewPostgresRefundRepository(db *sql.DB) RefundRepository {
	return &postgresRefundRepository{db: db}
}

func (r *postgresRefundRepository) BeginTx(ctx context.Context) (database.DBTX, error) {
	return r.db.BeginTx(ctx, nil)
}

func (r *postgresRefundRepository) InsertRefund(ctx context.Context, dbops database.DBTX, refund *domain.Refund) error {
	query := `INSERT INTO refunds (order_id, order_item_id, quantity, refund_amount, created_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	refund.CreatedAt = time.Now()
	err := dbops.QueryRowContext(ctx, query, refund.OrderID, refund.OrderItemID, refund.Quantity, refund.RefundAmount, refund.CreatedAt).
		Scan(&refund.ID, &refund.CreatedAt)
	if err != nil {
		logger.Error("InsertRefund: failed to insert refund", err, map[string]interface{}{"order_item_id": refund.OrderItemID})
		return err
	}
	return nil
}

func (r *postgresRefundRepository) ListRefundsByUserID(ctx context.Context, userID string) ([]domain.Refund, error) {
	query := `SELECT r.id, r.order_id, r.order_item_id, r.quantity, r.refund_amount, r.created_at
              FROM refunds r
              JOIN orders o ON r.order_id = o.id
              WHERE o.user_id = $1
              ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		logger.Error("ListRefundsByUserID: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	var refunds []domain.Refund
	for rows.Next() {
		var rf domain.Refund
		if err := rows.Scan(&rf.ID, &rf.OrderID, &rf.OrderItemID, &rf.Quantity, &rf.RefundAmount, &rf.CreatedAt); err != nil {
			logger.Error("ListRefundsByUserID: scan failed", err, nil)
			return nil, err
		}
		refunds = append(refunds, rf)
	}
	return refunds, rows.Err()
}

func (r *postgresRefundRepository) CreateRefundRequest(ctx context.Context, req *domain.RefundRequest) error {
	query := `INSERT INTO refund_requests (order_item_id, user_id, quantity, status, requested_at)
              VALUES ($1, $2, $3, $4, $5) RETURNING id, requested_at`
	req.Status = domain.RequestPending
	req.RequestedAt = time.Now()
	err := r.db.QueryRowContext(ctx, query, req.OrderItemID, req.UserID, req.Quantity, req.Status, req.RequestedAt).
		Scan(&req.ID, &req.RequestedAt)
	if err != nil {
		logger.Error("CreateRefundRequest: failed to insert request", err, map[string]interface{}{"order_item_id": req.OrderItemID})
		return err
	}
	return nil
}

func (r *postgresRefundRepository) ClaimPendingRequest(ctx context.Context, dbops database.DBTX, requestID string, decision domain.RefundRequestStatus, message string) (*domain.RefundRequest, error) {
	// Flip status dan pembacaan data request dalam satu statement; request
	// yang sama tidak mungkin diproses dua kali.
	query := `UPDATE refund_requests
              SET status = $1, response_message = $2, processed_at = NOW()
              WHERE id = $3 AND status = $4
              RETURNING id, order_item_id, user_id, quantity, status, response_message, requested_at, processed_at`
	var req domain.RefundRequest
	var processedAt sql.NullTime
	err := dbops.QueryRowContext(ctx, query, decision, message, requestID, domain.RequestPending).
		Scan(&req.ID, &req.OrderItemID, &req.UserID, &req.Quantity, &req.Status, &req.ResponseMessage, &req.RequestedAt, &processedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		logger.Error("ClaimPendingRequest: update failed", err, map[string]interface{}{"request_id": requestID})
		return nil, err
	}
	if processedAt.Valid {
		req.ProcessedAt = &processedAt.Time
	}
	return &req, nil
}

func (r *postgresRefundRepository) ListPendingRequests(ctx context.Context) ([]domain.RefundRequest, error) {
	query := `SELECT id, order_item_id, user_id, quantity, status, COALESCE(response_message, ''), requested_at, processed_at
              FROM refund_requests WHERE status = $1 ORDER BY requested_at ASC`
	rows, err := r.db.QueryContext(ctx, query, domain.RequestPending)
	if err != nil {
		logger.Error("ListPendingRequests: query failed", err, nil)
		return nil, err
	}
	defer rows.Close()

	var requests []domain.RefundRequest
	for rows.Next() {
		var req domain.RefundRequest
		var processedAt sql.NullTime
		if err := rows.Scan(&req.ID, &req.OrderItemID, &req.UserID, &req.Quantity, &req.Status, &req.ResponseMessage, &req.RequestedAt, &processedAt); err != nil {
			logger.Error("ListPendingRequests: scan failed", err, nil)
			return nil, err
		}
		if processedAt.Valid {
			req.ProcessedAt = &processedAt.Time
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
