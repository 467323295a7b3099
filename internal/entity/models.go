package entity

import (
	"time"
)

// ProductImages holds the image set for a product page.
type ProductImages struct {
	Main    string   `json:"main"`
	Hover   string   `json:"hover,omitempty"`
	Gallery []string `json:"gallery,omitempty"`
}

// Product represents a product in the store. Stock is tracked per size.
type Product struct {
	ID          string         `json:"id"`
	Slug        string         `json:"slug"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Reference   string         `json:"reference"`
	Images      ProductImages  `json:"images"`
	Sizes       []string       `json:"sizes"`
	Stock       map[string]int `json:"stock"`
	OnSale      bool           `json:"on_sale"`
	SoldOut     bool           `json:"sold_out"`
}

// CartLine is a line item in a cart, keyed by (ProductID, Size).
// Price is the unit price captured at add time.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
}

// Cart holds the line items for one owner key (user id or guest session).
type Cart struct {
	OwnerKey  string     `json:"owner_key"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FindLine returns the index of the line matching (productID, size), or -1.
func (c *Cart) FindLine(productID, size string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID && line.Size == size {
			return i
		}
	}
	return -1
}

// Totals is the server-computed cart pricing breakdown.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Address is a shipping address.
type Address struct {
	Line1    string `json:"line1"`
	City     string `json:"city"`
	Postcode string `json:"postal_code"`
	Country  string `json:"country"`
}

// Customer is the contact and shipping record captured at checkout.
type Customer struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address"`
}

// Order statuses advance monotonically through fulfillment.
const (
	OrderStatusPending    = "pending"
	OrderStatusPaid       = "paid"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Order is an immutable snapshot created once payment is confirmed.
// Only Status changes afterwards.
type Order struct {
	ID              string     `json:"id"`
	OrderID         string     `json:"order_id"`
	PaymentIntentID string     `json:"payment_intent_id"`
	UserID          string     `json:"user_id,omitempty"`
	Items           []CartLine `json:"items"`
	Customer        Customer   `json:"customer"`
	Subtotal        float64    `json:"subtotal"`
	Shipping        float64    `json:"shipping"`
	Total           float64    `json:"total"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// OrderVerifiable reports whether a status counts as a completed purchase.
func OrderVerifiable(status string) bool {
	switch status {
	case OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// User is a registered customer account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
}
