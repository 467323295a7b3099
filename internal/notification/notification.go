// Package notification sends transactional email. Send failures are reported
// to callers but must never roll back or fail the order they describe.
package notification

import (
	"context"

	"github.com/habscollection/storefront/internal/entity"
)

// Notifier delivers order lifecycle messages to the customer.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *entity.Order) error
}
