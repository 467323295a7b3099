// Package pricing is the single authority for money arithmetic: cart totals,
// shipping, minor-unit conversion and amount comparison. Handlers and clients
// only display values computed here.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/habscollection/storefront/internal/entity"
)

const (
	// FreeShippingThreshold is the subtotal at or above which shipping is free.
	FreeShippingThreshold = 300.0

	// FlatShippingFee applies below the threshold.
	FlatShippingFee = 10.0

	// AmountTolerance absorbs gateway-side rounding when comparing a charged
	// amount against a computed total.
	AmountTolerance = 0.01
)

// Subtotal sums price x quantity over the given lines.
func Subtotal(lines []entity.CartLine) float64 {
	sum := decimal.Zero
	for _, line := range lines {
		lineTotal := decimal.NewFromFloat(line.Price).Mul(decimal.NewFromInt(int64(line.Quantity)))
		sum = sum.Add(lineTotal)
	}
	f, _ := sum.Float64()
	return f
}

// ShippingFor returns the shipping cost for a subtotal.
func ShippingFor(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// TotalsFor computes the full pricing breakdown for a set of cart lines.
func TotalsFor(lines []entity.CartLine) entity.Totals {
	subtotal := Subtotal(lines)
	shipping := ShippingFor(subtotal)
	total, _ := decimal.NewFromFloat(subtotal).Add(decimal.NewFromFloat(shipping)).Float64()
	return entity.Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    total,
	}
}

// MinorUnits converts a major-unit amount to integer minor units (e.g. pounds
// to pence). Rounds rather than truncates so 19.999 bills as 2000, not 1999.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts integer minor units back to a major-unit amount.
func FromMinorUnits(minor int64) float64 {
	f, _ := decimal.NewFromInt(minor).Div(decimal.NewFromInt(100)).Float64()
	return f
}

// WithinTolerance reports whether two amounts agree within AmountTolerance.
func WithinTolerance(a, b float64) bool {
	diff := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(AmountTolerance))
}
