package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/metrics"
	"github.com/habscollection/storefront/internal/payment"
	"github.com/habscollection/storefront/internal/repository/memory"
	"github.com/habscollection/storefront/internal/service"
)

// fakeGateway holds intents in a map and lets tests dictate status and amount.
type fakeGateway struct {
	intents   map[string]*payment.Intent
	createErr error
	seq       int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*payment.Intent)}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*payment.Intent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.seq++
	intent := &payment.Intent{
		ID:           fmt.Sprintf("pi_test_%d", g.seq),
		ClientSecret: fmt.Sprintf("pi_test_%d_secret", g.seq),
		Amount:       int64(amount*100 + 0.5),
		Currency:     currency,
		Status:       payment.StatusRequiresPaymentMethod,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	intent, ok := g.intents[intentID]
	if !ok {
		return nil, fmt.Errorf("%w: no such payment intent %s", entity.ErrGateway, intentID)
	}
	return intent, nil
}

// put registers an intent directly, bypassing CreateIntent.
func (g *fakeGateway) put(id string, amountMinor int64, status payment.Status) {
	g.intents[id] = &payment.Intent{ID: id, Amount: amountMinor, Currency: "gbp", Status: status}
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) SendOrderConfirmation(ctx context.Context, order *entity.Order) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, order.OrderID)
	return nil
}

type recordingPublisher struct {
	topics []string
	events []any
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type checkoutFixture struct {
	products *memory.ProductStore
	orders   *memory.OrderStore
	carts    *service.CartService
	gateway  *fakeGateway
	notifier *recordingNotifier
	checkout *service.CheckoutService
}

func setupCheckout(t *testing.T) *checkoutFixture {
	t.Helper()

	products := memory.NewProductStore()
	err := products.Seed(context.Background(), []entity.Product{
		{
			ID:    "prod-abaya",
			Slug:  "classic-black-abaya",
			Name:  "Classic Black Abaya",
			Price: 75.00,
			Sizes: []string{"S", "M", "L"},
			Stock: map[string]int{"S": 5, "M": 5, "L": 1},
		},
		{
			ID:    "prod-hijab",
			Slug:  "satin-hijab-set",
			Name:  "Satin Hijab Set",
			Price: 10.00,
			Sizes: []string{"One Size"},
			Stock: map[string]int{"One Size": 20},
		},
	})
	require.NoError(t, err)

	orders := memory.NewOrderStore(products)
	carts := service.NewCartService(memory.NewCartStore())
	gateway := newFakeGateway()
	notifier := &recordingNotifier{}
	m := metrics.New(prometheus.NewRegistry())

	checkout := service.NewCheckoutService(carts, orders, gateway, nil, notifier, m, "gbp")
	return &checkoutFixture{
		products: products,
		orders:   orders,
		carts:    carts,
		gateway:  gateway,
		notifier: notifier,
		checkout: checkout,
	}
}

func (f *checkoutFixture) fillCart(t *testing.T, owner string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.carts.AddItem(ctx, owner, service.AddItemParams{
		ProductID: "prod-abaya",
		Size:      "M",
		Quantity:  2,
		Price:     75.00,
		Name:      "Classic Black Abaya",
		Image:     "/images/abaya-main.jpg",
	})
	require.NoError(t, err)
}

func testCustomer() entity.Customer {
	return entity.Customer{
		FirstName: "Amina",
		LastName:  "Khan",
		Email:     "amina@example.com",
		Address: entity.Address{
			Line1:    "1 High Street",
			City:     "London",
			Postcode: "E1 6AN",
			Country:  "GB",
		},
	}
}

func TestBeginCheckoutCreatesIntentForServerTotal(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.fillCart(t, "guest:g1")

	intent, err := f.checkout.BeginCheckout(ctx, "guest:g1")
	require.NoError(t, err)

	// 2 x 75.00 = 150.00 subtotal, below the free shipping threshold,
	// so 10.00 shipping on top: 16000 minor units.
	assert.Equal(t, int64(16000), intent.Amount)
	assert.Equal(t, "gbp", intent.Currency)
	assert.NotEmpty(t, intent.ID)
}

func TestBeginCheckoutRejectsEmptyCart(t *testing.T) {
	f := setupCheckout(t)

	_, err := f.checkout.BeginCheckout(context.Background(), "guest:empty")
	assert.ErrorIs(t, err, entity.ErrValidation)
	assert.Empty(t, f.gateway.intents)
}

func TestCompleteCheckoutSuccess(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.fillCart(t, "guest:g1")

	intent, err := f.checkout.BeginCheckout(ctx, "guest:g1")
	require.NoError(t, err)
	intent.Status = payment.StatusSucceeded

	order, err := f.checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: intent.ID,
		Customer:        testCustomer(),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusPaid, order.Status)
	assert.Regexp(t, `^ORD-[0-9a-z]+-[0-9a-f]{9}$`, order.OrderID)
	assert.Equal(t, 150.00, order.Subtotal)
	assert.Equal(t, 10.00, order.Shipping)
	assert.Equal(t, 160.00, order.Total)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)

	// Stock moved and the cart was cleared.
	remaining, err := f.products.Availability(ctx, "prod-abaya", "M")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)

	lines, err := f.carts.ListItems(ctx, "guest:g1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Without a broker the confirmation email goes out synchronously.
	assert.Equal(t, []string{order.OrderID}, f.notifier.sent)
}

func TestCompleteCheckoutRejectsUnsettledPayment(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	for _, status := range []payment.Status{
		payment.StatusRequiresPaymentMethod,
		payment.StatusProcessing,
		payment.StatusFailed,
		payment.StatusCanceled,
	} {
		t.Run(string(status), func(t *testing.T) {
			owner := "guest:" + string(status)
			f.fillCart(t, owner)
			f.gateway.put("pi_"+string(status), 16000, status)

			_, err := f.checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
				OwnerKey:        owner,
				PaymentIntentID: "pi_" + string(status),
				Customer:        testCustomer(),
			})
			assert.ErrorIs(t, err, entity.ErrPaymentNotCompleted)

			// No order, no stock movement, cart untouched.
			_, err = f.orders.FindByPaymentIntent(ctx, "pi_"+string(status))
			assert.ErrorIs(t, err, entity.ErrNotFound)
			lines, err := f.carts.ListItems(ctx, owner)
			require.NoError(t, err)
			assert.Len(t, lines, 1)
		})
	}

	remaining, err := f.products.Availability(ctx, "prod-abaya", "M")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestCompleteCheckoutRejectsAmountMismatch(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.fillCart(t, "guest:g1") // server total 160.00

	// The gateway charged 120.00 against a 160.00 cart.
	f.gateway.put("pi_short", 12000, payment.StatusSucceeded)

	_, err := f.checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: "pi_short",
		Customer:        testCustomer(),
	})
	assert.ErrorIs(t, err, entity.ErrAmountMismatch)

	_, err = f.orders.FindByPaymentIntent(ctx, "pi_short")
	assert.ErrorIs(t, err, entity.ErrNotFound)

	remaining, err := f.products.Availability(ctx, "prod-abaya", "M")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)
}

func TestCompleteCheckoutUnknownIntent(t *testing.T) {
	f := setupCheckout(t)
	f.fillCart(t, "guest:g1")

	_, err := f.checkout.CompleteCheckout(context.Background(), service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: "pi_missing",
		Customer:        testCustomer(),
	})
	assert.ErrorIs(t, err, entity.ErrGateway)
}

func TestCompleteCheckoutValidatesInput(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	_, err := f.checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
		OwnerKey: "guest:g1",
		Customer: testCustomer(),
	})
	assert.ErrorIs(t, err, entity.ErrValidation)

	_, err = f.checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: "pi_x",
	})
	assert.ErrorIs(t, err, entity.ErrValidation)
}

func TestCompleteCheckoutEmailFailureDoesNotFailOrder(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.fillCart(t, "guest:g1")
	f.notifier.err = errors.New("smtp connection refused")

	intent, err := f.checkout.BeginCheckout(ctx, "guest:g1")
	require.NoError(t, err)
	intent.Status = payment.StatusSucceeded

	order, err := f.checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: intent.ID,
		Customer:        testCustomer(),
	})
	require.NoError(t, err)

	stored, err := f.orders.FindByPaymentIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, stored.OrderID)
	assert.Equal(t, entity.OrderStatusPaid, stored.Status)
}

func TestCompleteCheckoutIdempotentResubmission(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.fillCart(t, "guest:g1")

	intent, err := f.checkout.BeginCheckout(ctx, "guest:g1")
	require.NoError(t, err)
	intent.Status = payment.StatusSucceeded

	params := service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: intent.ID,
		Customer:        testCustomer(),
	}
	first, err := f.checkout.CompleteCheckout(ctx, params)
	require.NoError(t, err)

	// The redirect page retries after the cart was already cleared: same
	// intent, same order, no second stock decrement.
	second, err := f.checkout.CompleteCheckout(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, first.ID, second.ID)

	remaining, err := f.products.Availability(ctx, "prod-abaya", "M")
	require.NoError(t, err)
	assert.Equal(t, 3, remaining)
}

func TestCompleteCheckoutInsufficientStockAbortsCommit(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()

	// One line fits, one exceeds stock: the whole commit must abort.
	_, err := f.carts.AddItem(ctx, "guest:g1", service.AddItemParams{
		ProductID: "prod-hijab", Size: "One Size", Quantity: 2, Price: 10.00,
		Name: "Satin Hijab Set", Image: "/images/hijab-main.jpg",
	})
	require.NoError(t, err)
	_, err = f.carts.AddItem(ctx, "guest:g1", service.AddItemParams{
		ProductID: "prod-abaya", Size: "L", Quantity: 3, Price: 75.00,
		Name: "Classic Black Abaya", Image: "/images/abaya-main.jpg",
	})
	require.NoError(t, err)

	totals, err := f.carts.Totals(ctx, "guest:g1")
	require.NoError(t, err)
	f.gateway.put("pi_oversell", int64(totals.Total*100+0.5), payment.StatusSucceeded)

	_, err = f.checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: "pi_oversell",
		Customer:        testCustomer(),
	})
	stockErr, ok := entity.IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, "prod-abaya", stockErr.ProductID)
	assert.Equal(t, "L", stockErr.Size)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 3, stockErr.Requested)

	// Nothing committed: no order, both stock rows untouched.
	_, err = f.orders.FindByPaymentIntent(ctx, "pi_oversell")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	remaining, err := f.products.Availability(ctx, "prod-hijab", "One Size")
	require.NoError(t, err)
	assert.Equal(t, 20, remaining)
	remaining, err = f.products.Availability(ctx, "prod-abaya", "L")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestCompleteCheckoutPublishesOrderPlaced(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	publisher := &recordingPublisher{}
	m := metrics.New(prometheus.NewRegistry())
	checkout := service.NewCheckoutService(f.carts, f.orders, f.gateway, publisher, f.notifier, m, "gbp")

	f.fillCart(t, "guest:g1")
	intent, err := checkout.BeginCheckout(ctx, "guest:g1")
	require.NoError(t, err)
	intent.Status = payment.StatusSucceeded

	order, err := checkout.CompleteCheckout(ctx, service.CompleteCheckoutParams{
		OwnerKey:        "guest:g1",
		PaymentIntentID: intent.ID,
		Customer:        testCustomer(),
	})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, []string{"orders.placed"}, publisher.topics)
	event, ok := publisher.events[0].(entity.OrderPlaced)
	require.True(t, ok)
	assert.Equal(t, order.OrderID, event.OrderID)
	assert.Equal(t, order.Total, event.Total)

	// The broker consumer owns the email now, so nothing sent inline.
	assert.Empty(t, f.notifier.sent)
}

func TestVerifyPayment(t *testing.T) {
	f := setupCheckout(t)
	ctx := context.Background()
	f.gateway.put("pi_ok", 16000, payment.StatusSucceeded)
	f.gateway.put("pi_pending", 16000, payment.StatusProcessing)

	status, ok, err := f.checkout.VerifyPayment(ctx, "pi_ok")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payment.StatusSucceeded, status)

	status, ok, err = f.checkout.VerifyPayment(ctx, "pi_pending")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, payment.StatusProcessing, status)

	_, _, err = f.checkout.VerifyPayment(ctx, "pi_gone")
	assert.ErrorIs(t, err, entity.ErrGateway)
}
