package domain

import (
	"time"
)

// Cart milik tepat satu user terautentikasi atau satu session key anonim.
// Core hanya membaca cart aktif untuk membentuk order; mutasi item
// (tambah/hapus) ada di collaborator luar.
type Cart struct {
	ID         string     `json:"id"`
	UserID     *string    `json:"user_id,omitempty"`
	SessionKey *string    `json:"session_key,omitempty"`
	IsActive   bool       `json:"is_active"`
	Items      []CartItem `json:"items,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        string `json:"id"`
	CartID    string `json:"-"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
