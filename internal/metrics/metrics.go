package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront's Prometheus collectors.
type Metrics struct {
	OrdersPlaced         prometheus.Counter
	CheckoutFailures     *prometheus.CounterVec
	PaymentVerifications *prometheus.CounterVec
	EmailSendErrors      prometheus.Counter
}

// New registers the storefront collectors against reg. Tests pass a fresh
// prometheus.NewRegistry so registration never collides.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "orders_placed_total",
			Help:      "Total number of orders committed.",
		}),
		CheckoutFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkout_failures_total",
			Help:      "Total number of failed checkout attempts by reason.",
		}, []string{"reason"}),
		PaymentVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "payment_verifications_total",
			Help:      "Total number of payment intent verifications by gateway status.",
		}, []string{"status"}),
		EmailSendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "email_send_errors_total",
			Help:      "Total number of failed confirmation email sends.",
		}),
	}
	reg.MustRegister(m.OrdersPlaced, m.CheckoutFailures, m.PaymentVerifications, m.EmailSendErrors)
	return m
}

// Handler serves the default Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
