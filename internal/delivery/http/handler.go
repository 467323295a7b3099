package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/metrics"
	"github.com/habscollection/storefront/internal/service"
)

// Handler handles HTTP requests for the storefront API.
type Handler struct {
	catalog  *service.CatalogService
	cart     *service.CartService
	checkout *service.CheckoutService
	orders   *service.OrderService
	auth     *service.AuthService

	publishableKey string
}

func NewHandler(
	catalog *service.CatalogService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	orders *service.OrderService,
	auth *service.AuthService,
	publishableKey string,
) *Handler {
	return &Handler{
		catalog:        catalog,
		cart:           cart,
		checkout:       checkout,
		orders:         orders,
		auth:           auth,
		publishableKey: publishableKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleGetProducts)
	mux.HandleFunc("GET /api/products/{slug}", h.handleGetProduct)
	mux.HandleFunc("GET /api/products/{id}/stock", h.handleGetStock)
	mux.HandleFunc("PUT /api/products/{id}/stock", h.handleDecrementStock)

	mux.HandleFunc("GET /api/cart", h.handleGetCart)
	mux.HandleFunc("POST /api/cart", h.handleAddToCart)
	mux.HandleFunc("PUT /api/cart/{id}", h.handleUpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/{id}", h.handleRemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.handleClearCart)
	mux.HandleFunc("GET /api/cart/total", h.handleCartTotal)

	mux.HandleFunc("POST /api/create-payment-intent", h.handleCreatePaymentIntent)
	mux.HandleFunc("POST /api/verify-payment", h.handleVerifyPayment)
	mux.HandleFunc("GET /api/stripe/config", h.handleStripeConfig)

	mux.HandleFunc("POST /api/orders", h.handleCreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.handleGetOrder)
	mux.HandleFunc("GET /api/orders/verify/{id}", h.handleVerifyOrder)

	mux.HandleFunc("POST /api/auth/signup", h.handleSignup)
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /api/auth/user", h.handleGetUser)
	mux.HandleFunc("PUT /api/auth/user", h.handleUpdateUser)
	mux.HandleFunc("PUT /api/auth/change-password", h.handleChangePassword)
	mux.HandleFunc("GET /api/auth/orders", h.handleUserOrders)

	mux.Handle("GET /metrics", metrics.Handler())
}

// --- catalog ---

func (h *Handler) handleGetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.ProductBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleGetStock(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	if size := r.URL.Query().Get("size"); size != "" {
		count, err := h.catalog.StockForSize(r.Context(), productID, size)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"stock": count})
		return
	}

	stock, err := h.catalog.Stock(r.Context(), productID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stock": stock})
}

func (h *Handler) handleDecrementStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size     string `json:"size"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	remaining, err := h.catalog.DecrementStock(r.Context(), r.PathValue("id"), req.Size, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Stock updated",
		"currentStock": remaining,
	})
}

// --- cart ---

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	lines, err := h.cart.ListItems(r.Context(), h.ownerKey(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

type cartItemRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Size     string  `json:"size"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	lines, err := h.cart.AddItem(r.Context(), h.ownerKey(w, r), service.AddItemParams{
		ProductID: req.ID,
		Size:      req.Size,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Name:      req.Name,
		Image:     req.Image,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"items":   lines,
	})
}

func (h *Handler) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size     string `json:"size"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	lines, err := h.cart.UpdateItem(r.Context(), h.ownerKey(w, r), r.PathValue("id"), req.Size, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   lines,
	})
}

func (h *Handler) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	size := r.URL.Query().Get("size")
	if size == "" {
		var req struct {
			Size string `json:"size"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			size = req.Size
		}
	}

	lines, err := h.cart.RemoveItem(r.Context(), h.ownerKey(w, r), r.PathValue("id"), size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   lines,
	})
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(r.Context(), h.ownerKey(w, r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleCartTotal(w http.ResponseWriter, r *http.Request) {
	totals, err := h.cart.Totals(r.Context(), h.ownerKey(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// --- checkout & orders ---

func (h *Handler) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	intent, err := h.checkout.BeginCheckout(r.Context(), h.ownerKey(w, r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
	})
}

func (h *Handler) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentIntent string `json:"payment_intent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	status, verified, err := h.checkout.VerifyPayment(r.Context(), req.PaymentIntent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"verified": verified,
		"status":   status,
	})
}

func (h *Handler) handleStripeConfig(w http.ResponseWriter, r *http.Request) {
	// Only the publishable key, never the secret key.
	writeJSON(w, http.StatusOK, map[string]string{
		"publishableKey": h.publishableKey,
	})
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentIntentID string          `json:"paymentIntentId"`
		Customer        entity.Customer `json:"customer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	var userID string
	if user, err := h.currentUser(r); err == nil {
		userID = user.ID
	}

	order, err := h.checkout.CompleteCheckout(r.Context(), service.CompleteCheckoutParams{
		OwnerKey:        h.ownerKey(w, r),
		UserID:          userID,
		PaymentIntentID: req.PaymentIntentID,
		Customer:        req.Customer,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orderId": order.OrderID,
		"message": "Order created successfully",
	})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleVerifyOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.orders.Verify(r.Context(), r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"valid":   false,
			"message": "Order not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseLimit reads a positive ?limit= value, defaulting when absent or bad.
func parseLimit(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
