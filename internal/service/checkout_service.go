package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/messaging"
	"github.com/habscollection/storefront/internal/metrics"
	"github.com/habscollection/storefront/internal/notification"
	"github.com/habscollection/storefront/internal/payment"
	"github.com/habscollection/storefront/internal/pricing"
	"github.com/habscollection/storefront/internal/repository"
)

// CheckoutState is the phase of one checkout attempt.
type CheckoutState string

const (
	StateCollecting      CheckoutState = "collecting"
	StateAwaitingPayment CheckoutState = "awaiting_payment"
	StateVerifying       CheckoutState = "verifying"
	StateCommitting      CheckoutState = "committing"
	StateNotifying       CheckoutState = "notifying"
	StateComplete        CheckoutState = "complete"
	StateFailed          CheckoutState = "failed"
)

// checkoutTransitions encodes the legal forward edges. Failed is reachable
// from every state except Complete.
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	StateCollecting:      {StateAwaitingPayment},
	StateAwaitingPayment: {StateVerifying},
	StateVerifying:       {StateCommitting},
	StateCommitting:      {StateNotifying},
	StateNotifying:       {StateComplete},
}

// checkoutAttempt tracks one buyer's progress through the state machine.
type checkoutAttempt struct {
	state CheckoutState
}

func newCheckoutAttempt(start CheckoutState) *checkoutAttempt {
	return &checkoutAttempt{state: start}
}

func (a *checkoutAttempt) advance(to CheckoutState) error {
	if to == StateFailed {
		if a.state == StateComplete {
			return fmt.Errorf("checkout already complete, cannot fail")
		}
		a.state = StateFailed
		return nil
	}
	for _, next := range checkoutTransitions[a.state] {
		if next == to {
			a.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal checkout transition %s -> %s", a.state, to)
}

// CheckoutService orchestrates the multi-step checkout workflow: cart totals,
// payment intent creation, independent gateway verification, transactional
// order commit with stock decrement, and best-effort notification.
type CheckoutService struct {
	carts     *CartService
	orders    repository.OrderRepository
	gateway   payment.Gateway
	publisher messaging.Publisher
	notifier  notification.Notifier
	metrics   *metrics.Metrics
	currency  string
}

func NewCheckoutService(
	carts *CartService,
	orders repository.OrderRepository,
	gateway payment.Gateway,
	publisher messaging.Publisher,
	notifier notification.Notifier,
	m *metrics.Metrics,
	currency string,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		notifier:  notifier,
		metrics:   m,
		currency:  currency,
	}
}

// BeginCheckout moves Collecting -> AwaitingPayment: it requires a non-empty
// cart with a positive total and creates a payment intent for that total.
// The intent amount always comes from the server-side cart, never the client.
func (s *CheckoutService) BeginCheckout(ctx context.Context, ownerKey string) (*payment.Intent, error) {
	attempt := newCheckoutAttempt(StateCollecting)

	totals, err := s.carts.Totals(ctx, ownerKey)
	if err != nil {
		attempt.advance(StateFailed)
		return nil, err
	}
	if totals.Total <= 0 {
		attempt.advance(StateFailed)
		s.countFailure("empty_cart")
		return nil, fmt.Errorf("%w: cart is empty", entity.ErrValidation)
	}

	intent, err := s.gateway.CreateIntent(ctx, totals.Total, s.currency, map[string]string{
		"owner_key": ownerKey,
	})
	if err != nil {
		attempt.advance(StateFailed)
		s.countFailure("gateway")
		return nil, err
	}

	if err := attempt.advance(StateAwaitingPayment); err != nil {
		return nil, err
	}

	slog.Info("Checkout: payment intent created", "owner", ownerKey, "intent_id", intent.ID, "total", totals.Total)
	return intent, nil
}

// VerifyPayment independently retrieves the intent's status from the gateway.
// The client-reported outcome is never trusted.
func (s *CheckoutService) VerifyPayment(ctx context.Context, intentID string) (payment.Status, bool, error) {
	intent, err := s.gateway.RetrieveIntent(ctx, intentID)
	if err != nil {
		return "", false, err
	}
	if s.metrics != nil {
		s.metrics.PaymentVerifications.WithLabelValues(string(intent.Status)).Inc()
	}
	return intent.Status, intent.Status == payment.StatusSucceeded, nil
}

// CompleteCheckoutParams carries the client's report that payment finished.
// Everything in it is re-verified server-side.
type CompleteCheckoutParams struct {
	OwnerKey        string
	UserID          string
	PaymentIntentID string
	Customer        entity.Customer
}

// CompleteCheckout drives AwaitingPayment -> Verifying -> Committing ->
// Notifying -> Complete. On any verification failure no order is created and
// no stock moves. Re-submission of an already-committed payment intent
// returns the existing order.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, params CompleteCheckoutParams) (*entity.Order, error) {
	if params.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", entity.ErrValidation)
	}
	if params.Customer.Email == "" {
		return nil, fmt.Errorf("%w: customer email is required", entity.ErrValidation)
	}

	attempt := newCheckoutAttempt(StateAwaitingPayment)
	if err := attempt.advance(StateVerifying); err != nil {
		return nil, err
	}

	intent, err := s.gateway.RetrieveIntent(ctx, params.PaymentIntentID)
	if err != nil {
		attempt.advance(StateFailed)
		s.countFailure("gateway")
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PaymentVerifications.WithLabelValues(string(intent.Status)).Inc()
	}
	if intent.Status != payment.StatusSucceeded {
		attempt.advance(StateFailed)
		s.countFailure("payment_not_completed")
		return nil, fmt.Errorf("%w (status: %s)", entity.ErrPaymentNotCompleted, intent.Status)
	}

	lines, err := s.carts.ListItems(ctx, params.OwnerKey)
	if err != nil {
		attempt.advance(StateFailed)
		return nil, err
	}
	totals := pricing.TotalsFor(lines)

	charged := pricing.FromMinorUnits(intent.Amount)
	if !pricing.WithinTolerance(charged, totals.Total) {
		// A retry after the cart was already cleared computes a zero total.
		// If the intent was committed before, return that order instead of
		// failing the redirect page.
		if existing, err := s.orders.FindByPaymentIntent(ctx, params.PaymentIntentID); err == nil {
			slog.Info("Checkout: payment intent already committed", "order_id", existing.OrderID)
			return existing, nil
		}
		attempt.advance(StateFailed)
		s.countFailure("amount_mismatch")
		slog.Error("Checkout: payment amount mismatch", "expected", totals.Total, "charged", charged)
		return nil, fmt.Errorf("%w (expected: %.2f, actual: %.2f)", entity.ErrAmountMismatch, totals.Total, charged)
	}

	if err := attempt.advance(StateCommitting); err != nil {
		return nil, err
	}

	order := &entity.Order{
		ID:              uuid.NewString(),
		OrderID:         generateOrderID(),
		PaymentIntentID: params.PaymentIntentID,
		UserID:          params.UserID,
		Items:           append([]entity.CartLine(nil), lines...),
		Customer:        params.Customer,
		Subtotal:        totals.Subtotal,
		Shipping:        totals.Shipping,
		Total:           totals.Total,
		Status:          entity.OrderStatusPaid,
		CreatedAt:       time.Now(),
	}

	err = s.orders.Commit(ctx, order)
	if errors.Is(err, entity.ErrDuplicate) {
		existing, findErr := s.orders.FindByPaymentIntent(ctx, params.PaymentIntentID)
		if findErr != nil {
			return nil, fmt.Errorf("failed to load existing order for intent %s: %w", params.PaymentIntentID, findErr)
		}
		slog.Info("Checkout: duplicate submission, returning existing order", "order_id", existing.OrderID)
		return existing, nil
	}
	if err != nil {
		attempt.advance(StateFailed)
		if _, ok := entity.IsInsufficientStock(err); ok {
			s.countFailure("insufficient_stock")
		} else {
			s.countFailure("commit")
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}
	slog.Info("Checkout: order committed", "order_id", order.OrderID, "total", order.Total)

	if err := attempt.advance(StateNotifying); err != nil {
		return nil, err
	}

	// Everything past the commit is best-effort: the order stands even if
	// cart clearing, event publishing or email delivery fails.
	if err := s.carts.Clear(ctx, params.OwnerKey); err != nil {
		slog.Error("Checkout: failed to clear cart after commit", "owner", params.OwnerKey, "err", err)
	}

	if s.publisher != nil {
		event := entity.OrderPlaced{
			OrderID:         order.OrderID,
			PaymentIntentID: order.PaymentIntentID,
			Items:           order.Items,
			Customer:        order.Customer,
			Subtotal:        order.Subtotal,
			Shipping:        order.Shipping,
			Total:           order.Total,
			PlacedAt:        order.CreatedAt,
		}
		if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersPlaced, order.OrderID, event); err != nil {
			slog.Error("Checkout: failed to publish OrderPlaced", "order_id", order.OrderID, "err", err)
		}
	}

	// With a broker wired, the orders.placed consumer owns the email; without
	// one, send it synchronously here. Either way failure is logged and dropped.
	if s.notifier != nil && s.publisher == nil {
		if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
			if s.metrics != nil {
				s.metrics.EmailSendErrors.Inc()
			}
			slog.Error("Checkout: failed to send confirmation email", "order_id", order.OrderID, "err", err)
		}
	}

	if err := attempt.advance(StateComplete); err != nil {
		return nil, err
	}
	return order, nil
}

// generateOrderID builds the human-readable id, e.g. ORD-m5cwl2o0-4f9b21a3c.
// The first segment is the creation time in base 36, so ids sort by age.
func generateOrderID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "ORD-" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + suffix
}

func (s *CheckoutService) countFailure(reason string) {
	if s.metrics != nil {
		s.metrics.CheckoutFailures.WithLabelValues(reason).Inc()
	}
}
