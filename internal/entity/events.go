package entity

import "time"

// OrderPlaced is emitted once an order has been committed to the database.
// Downstream consumers send the confirmation email and advance fulfillment.
type OrderPlaced struct {
	OrderID         string     `json:"order_id"`
	PaymentIntentID string     `json:"payment_intent_id"`
	Items           []CartLine `json:"items"`
	Customer        Customer   `json:"customer"`
	Subtotal        float64    `json:"subtotal"`
	Shipping        float64    `json:"shipping"`
	Total           float64    `json:"total"`
	PlacedAt        time.Time  `json:"placed_at"`
}

// OrderConfirmed is emitted after post-commit processing (confirmation email
// queued) so fulfillment systems can pick the order up.
type OrderConfirmed struct {
	OrderID     string    `json:"order_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
