package domain

import (
	"time"
)

type TransactionStatus string

const TransactionCompleted TransactionStatus = "Completed"

// Transaction dicatat tepat satu kali per payment capture yang sukses.
// Keberadaan barisnya adalah idempotency guard terhadap double-capture.
type Transaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	OrderID   string            `json:"order_id"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

type CardDetails struct {
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

type ProcessPaymentResponse struct {
	Message     string `json:"message"`
	InvoiceHTML string `json:"invoice_html,omitempty"`
}
