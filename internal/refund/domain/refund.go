package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Refund adalah catatan append-only, satu baris per operasi refund yang
// benar-benar dieksekusi (langsung maupun lewat request yang disetujui).
type Refund struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	OrderItemID  string          `json:"order_item_id"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

type RefundRequestStatus string

const (
	RequestPending  RefundRequestStatus = "Pending"
	RequestApproved RefundRequestStatus = "Approved"
	RequestRejected RefundRequestStatus = "Rejected"
)

// RefundRequest adalah jalur request/approval: customer mengajukan,
// sales manager memutuskan. Diproses paling banyak satu kali.
type RefundRequest struct {
	ID              string              `json:"id"`
	OrderItemID     string              `json:"order_item_id"`
	UserID          string              `json:"user_id"`
	Quantity        int                 `json:"quantity"`
	Status          RefundRequestStatus `json:"status"`
	ResponseMessage string              `json:"response_message,omitempty"`
	RequestedAt     time.Time           `json:"requested_at"`
	ProcessedAt     *time.Time          `json:"processed_at,omitempty"`
}

type RefundLine struct {
	OrderItemID string `json:"order_item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

type RefundOrderRequest struct {
	Lines []RefundLine `json:"lines" binding:"required,min=1,dive"`
}

type RefundOrderResponse struct {
	RefundedAmount decimal.Decimal `json:"refunded_amount"`
	OrderStatus    string          `json:"order_status"`
}

type CreateRefundRequestBody struct {
	OrderItemID string `json:"order_item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

type ProcessRefundRequestBody struct {
	Decision string `json:"decision" binding:"required,oneof=Approved Rejected"`
	Message  string `json:"message"`
}
