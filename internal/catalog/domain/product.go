package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product adalah view katalog yang dikonsumsi core: harga, stok, dan
// jendela diskon. CRUD katalog lengkap dikelola di luar core.
type Product struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	DiscountRate  decimal.Decimal `json:"discount_rate"` // 0.00 - 1.00
	DiscountStart *time.Time      `json:"discount_start,omitempty"`
	DiscountEnd   *time.Time      `json:"discount_end,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CurrentPrice mengembalikan harga efektif pada waktu tertentu.
// Di luar jendela diskon (atau rate 0), harga dasar yang berlaku.
func (p Product) CurrentPrice(now time.Time) decimal.Decimal {
	if p.DiscountRate.IsZero() || p.DiscountStart == nil || p.DiscountEnd == nil {
		return p.Price
	}
	if now.Before(*p.DiscountStart) || now.After(*p.DiscountEnd) {
		return p.Price
	}
	one := decimal.NewFromInt(1)
	return p.Price.Mul(one.Sub(p.DiscountRate)).Round(2)
}
