package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// transitions adalah graf transisi legal. Cancelled dan Refunded terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// CanTransition memeriksa apakah transisi from -> to legal.
func CanTransition(from, to OrderStatus) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition mengembalikan ErrInvalidTransition yang menyebut
// pasangan from -> to kalau transisinya tidak ada di tabel.
func ValidateTransition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// AllowedTransitions mengembalikan daftar status tujuan yang legal dari `from`.
func AllowedTransitions(from OrderStatus) []OrderStatus {
	allowed, ok := transitions[from]
	if !ok {
		return []OrderStatus{}
	}
	result := make([]OrderStatus, len(allowed))
	copy(result, allowed)
	return result
}
