package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
	StatusRefunded   OrderStatus = "Refunded"
)

// IsValid true jika status dikenal oleh state machine.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Order adalah snapshot pembelian yang immutable: total dan harga per line
// dibekukan saat placement, perubahan harga katalog belakangan tidak
// mengubah order historis.
type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     OrderStatus     `json:"status"`
	Items      []OrderItem     `json:"items,omitempty"` // Di-populate saat get order details
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"-"`
	ProductID        string          `json:"product_id"`
	Quantity         int             `json:"quantity"`
	PriceAtPurchase  decimal.Decimal `json:"price_at_purchase"`
	DiscountRate     decimal.Decimal `json:"discount_rate"` // snapshot rate diskon saat pembelian
	RefundedQuantity int             `json:"refunded_quantity"`
	CreatedAt        time.Time       `json:"created_at"`
}

// RefundableQuantity = quantity - refunded_quantity.
func (i OrderItem) RefundableQuantity() int {
	return i.Quantity - i.RefundedQuantity
}

// OrderStatusHistory adalah log append-only; satu baris per transisi,
// termasuk baris pembuatan (previous_status kosong).
type OrderStatusHistory struct {
	ID             string      `json:"id"`
	OrderID        string      `json:"-"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
	ChangedAt      time.Time   `json:"changed_at"`
}

type PlaceOrderResponse struct {
	Order
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
