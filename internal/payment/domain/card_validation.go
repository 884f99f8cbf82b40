package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingFields     = errors.New("missing payment fields")
	ErrInvalidCardNumber = errors.New("invalid card number")
	ErrInvalidExpiry     = errors.New("invalid expiry format, expected MM/YY")
	ErrCardExpired       = errors.New("card expired")
	ErrInvalidCVV        = errors.New("invalid CVV")
)

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateCard memvalidasi field kartu secara struktural, urut dan fail-fast:
// kelengkapan field -> nomor kartu 16 digit -> expiry MM/YY atau MM/YYYY dan
// belum lewat -> CVV 3 digit. Tidak ada settlement sungguhan di sini.
func ValidateCard(card CardDetails, now time.Time) error {
	cardNumber := strings.TrimSpace(card.CardNumber)
	expiry := strings.TrimSpace(card.Expiry)
	cvv := strings.TrimSpace(card.CVV)

	if cardNumber == "" || expiry == "" || cvv == "" {
		return ErrMissingFields
	}

	if !isDigits(cardNumber) || len(cardNumber) != 16 {
		return ErrInvalidCardNumber
	}

	parts := strings.Split(expiry, "/")
	if len(parts) != 2 {
		return ErrInvalidExpiry
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return ErrInvalidExpiry
	}
	yearStr := parts[1]
	if !isDigits(yearStr) {
		return ErrInvalidExpiry
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return ErrInvalidExpiry
	}
	if len(yearStr) <= 2 {
		year += 2000
	}
	expDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	if expDate.Before(now) {
		return ErrCardExpired
	}

	if !isDigits(cvv) || len(cvv) != 3 {
		return ErrInvalidCVV
	}

	return nil
}
