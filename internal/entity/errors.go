package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for the service layer. The HTTP delivery layer maps these
// to status codes; everything else degrades to a generic 500.
var (
	ErrValidation          = errors.New("invalid request")
	ErrNotFound            = errors.New("not found")
	ErrPaymentNotCompleted = errors.New("payment has not been completed successfully")
	ErrAmountMismatch      = errors.New("payment amount does not match order total")
	ErrGateway             = errors.New("could not verify payment with gateway")
	ErrNotification        = errors.New("failed to send notification")
	ErrUnauthorized        = errors.New("not authorized")
	ErrDuplicate           = errors.New("already exists")
)

// InsufficientStockError reports a failed stock decrement. Available is the
// count at the time of the attempt so the buyer can be told how many are left.
type InsufficientStockError struct {
	ProductID string
	Size      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s size %s (available: %d, requested: %d)",
		e.ProductID, e.Size, e.Available, e.Requested)
}

// IsInsufficientStock reports whether err is an InsufficientStockError and
// returns it if so.
func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr, true
	}
	return nil, false
}
