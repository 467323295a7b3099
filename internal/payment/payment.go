// Package payment defines the gateway adapter for hosted card processing.
// The client drives confirmation through the hosted payment UI; the server
// only creates intents and independently verifies their status afterwards.
package payment

import (
	"context"
)

// Status is the gateway-reported lifecycle state of a payment intent.
type Status string

const (
	StatusRequiresPaymentMethod Status = "requires_payment_method"
	StatusRequiresConfirmation  Status = "requires_confirmation"
	StatusProcessing            Status = "processing"
	StatusSucceeded             Status = "succeeded"
	StatusFailed                Status = "failed"
	StatusCanceled              Status = "canceled"
)

// Intent references a gateway-owned payment intent. Amount is in minor units
// (pence/cents), as the gateway reports it.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       Status `json:"status"`
}

// Gateway is the payment provider adapter. Implementations must never trust
// client-supplied state: RetrieveIntent is the only source of truth for
// whether money actually moved.
type Gateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, intentID string) (*Intent, error)
}
