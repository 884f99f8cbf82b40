package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProductCurrentPrice(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	start := now.Add(-24 * time.Hour)
	end := now.Add(24 * time.Hour)

	base := Product{
		ID:    "prod1",
		Title: "Buku Go",
		Price: decimal.RequireFromString("100.00"),
		Stock: 10,
	}

	t.Run("No discount returns base price", func(t *testing.T) {
		assert.True(t, base.CurrentPrice(now).Equal(decimal.RequireFromString("100.00")))
	})

	t.Run("Active discount window applies rate", func(t *testing.T) {
		p := base
		p.DiscountRate = decimal.RequireFromString("0.25")
		p.DiscountStart = &start
		p.DiscountEnd = &end
		assert.True(t, p.CurrentPrice(now).Equal(decimal.RequireFromString("75.00")))
	})

	t.Run("Discounted price rounds to 2 decimals", func(t *testing.T) {
		p := base
		p.Price = decimal.RequireFromString("19.99")
		p.DiscountRate = decimal.RequireFromString("0.15")
		p.DiscountStart = &start
		p.DiscountEnd = &end
		// 19.99 * 0.85 = 16.9915 -> 16.99
		assert.True(t, p.CurrentPrice(now).Equal(decimal.RequireFromString("16.99")))
	})

	t.Run("Before window returns base price", func(t *testing.T) {
		p := base
		p.DiscountRate = decimal.RequireFromString("0.25")
		futureStart := now.Add(time.Hour)
		p.DiscountStart = &futureStart
		p.DiscountEnd = &end
		assert.True(t, p.CurrentPrice(now).Equal(base.Price))
	})

	t.Run("After window returns base price", func(t *testing.T) {
		p := base
		p.DiscountRate = decimal.RequireFromString("0.25")
		pastEnd := now.Add(-time.Hour)
		p.DiscountStart = &start
		p.DiscountEnd = &pastEnd
		assert.True(t, p.CurrentPrice(now).Equal(base.Price))
	})

	t.Run("Rate set but window missing returns base price", func(t *testing.T) {
		p := base
		p.DiscountRate = decimal.RequireFromString("0.25")
		assert.True(t, p.CurrentPrice(now).Equal(base.Price))
	})
}
