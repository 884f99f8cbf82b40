package domain

import (
	"time"
)

// Invoice satu-ke-satu dengan order, dibuat setelah payment capture sukses.
// Pembuatan/pengiriman artefaknya best-effort dan tidak pernah membatalkan
// payment yang sudah ter-commit.
type Invoice struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Number    string    `json:"number"`
	CreatedAt time.Time `json:"created_at"`
}
