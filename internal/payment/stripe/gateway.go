// Package stripe implements the payment.Gateway adapter against a
// Stripe-shaped REST API (form-encoded requests, bearer secret key).
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/payment"
	"github.com/habscollection/storefront/internal/pricing"
)

const defaultBaseURL = "https://api.stripe.com/v1"

// Gateway talks to the card-processing provider over HTTP. Every call carries
// a timeout so a hung gateway fails the checkout instead of hanging it.
type Gateway struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBaseURL overrides the API base URL (used by tests and mock gateways).
func WithBaseURL(baseURL string) Option {
	return func(g *Gateway) {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.client.Timeout = d
	}
}

func New(secretKey string, opts ...Option) *Gateway {
	g := &Gateway{
		secretKey: secretKey,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CreateIntent creates a payment intent for the given major-unit amount.
// Conversion to minor units rounds rather than truncates.
func (g *Gateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*payment.Intent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", entity.ErrValidation)
	}

	form := url.Values{}
	form.Set("amount", fmt.Sprintf("%d", pricing.MinorUnits(amount)))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	return g.do(ctx, http.MethodPost, "/payment_intents", form)
}

// RetrieveIntent fetches the current state of an intent from the gateway,
// independent of anything the client claims.
func (g *Gateway) RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	if intentID == "" {
		return nil, fmt.Errorf("%w: payment intent id is required", entity.ErrValidation)
	}
	return g.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(intentID), nil)
}

func (g *Gateway) do(ctx context.Context, method, path string, form url.Values) (*payment.Intent, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: gateway returned %d", entity.ErrGateway, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s", entity.ErrGateway, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%w: gateway returned %d", entity.ErrGateway, resp.StatusCode)
	}

	var intent payment.Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &intent, nil
}
