package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCard(t *testing.T) {
	// Waktu acuan tetap supaya kasus expired deterministik.
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

	validCard := CardDetails{
		CardNumber: "4111111111111111",
		Expiry:     "12/27",
		CVV:        "123",
	}

	t.Run("Valid card passes", func(t *testing.T) {
		assert.NoError(t, ValidateCard(validCard, now))
	})

	t.Run("Four digit year accepted", func(t *testing.T) {
		card := validCard
		card.Expiry = "12/2027"
		assert.NoError(t, ValidateCard(card, now))
	})

	t.Run("Whitespace around fields is trimmed", func(t *testing.T) {
		card := CardDetails{
			CardNumber: " 4111111111111111 ",
			Expiry:     " 12/27 ",
			CVV:        " 123 ",
		}
		assert.NoError(t, ValidateCard(card, now))
	})

	t.Run("Missing fields", func(t *testing.T) {
		for _, card := range []CardDetails{
			{Expiry: "12/27", CVV: "123"},
			{CardNumber: "4111111111111111", CVV: "123"},
			{CardNumber: "4111111111111111", Expiry: "12/27"},
			{CardNumber: "   ", Expiry: "12/27", CVV: "123"},
		} {
			assert.ErrorIs(t, ValidateCard(card, now), ErrMissingFields)
		}
	})

	t.Run("Card number must be 16 digits", func(t *testing.T) {
		card := validCard
		card.CardNumber = "411111111111111" // 15 digit
		assert.ErrorIs(t, ValidateCard(card, now), ErrInvalidCardNumber)

		card.CardNumber = "4111-1111-1111-1111"
		assert.ErrorIs(t, ValidateCard(card, now), ErrInvalidCardNumber)
	})

	t.Run("Expiry format", func(t *testing.T) {
		for _, expiry := range []string{"1227", "13/27", "0/27", "ab/27", "12/xx", "12/27/01"} {
			card := validCard
			card.Expiry = expiry
			assert.ErrorIs(t, ValidateCard(card, now), ErrInvalidExpiry, "expiry %q", expiry)
		}
	})

	t.Run("Expired card", func(t *testing.T) {
		card := validCard
		card.Expiry = "05/26" // 1 Mei 2026 sudah lewat dari acuan
		assert.ErrorIs(t, ValidateCard(card, now), ErrCardExpired)
	})

	t.Run("Expiry in current month still valid", func(t *testing.T) {
		// Awal bulan berjalan tidak Before(now awal bulan) hanya jika now tepat
		// di awal bulan; pakai acuan awal bulan untuk kasus batas.
		startOfMonth := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
		card := validCard
		card.Expiry = "06/26"
		assert.NoError(t, ValidateCard(card, startOfMonth))
	})

	t.Run("CVV must be 3 digits", func(t *testing.T) {
		for _, cvv := range []string{"12", "1234", "12a"} {
			card := validCard
			card.CVV = cvv
			assert.ErrorIs(t, ValidateCard(card, now), ErrInvalidCVV, "cvv %q", cvv)
		}
	})
}
