package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/messaging"
	"github.com/habscollection/storefront/internal/notification"
	"github.com/habscollection/storefront/internal/repository"
)

// OrderService covers post-checkout order lookup, verification, and the
// event-driven confirmation pipeline.
type OrderService struct {
	orders    repository.OrderRepository
	publisher messaging.Publisher
	notifier  notification.Notifier
}

func NewOrderService(orders repository.OrderRepository, publisher messaging.Publisher, notifier notification.Notifier) *OrderService {
	return &OrderService{orders: orders, publisher: publisher, notifier: notifier}
}

// Get looks up an order by its human-readable or store-assigned id.
func (s *OrderService) Get(ctx context.Context, identifier string) (*entity.Order, error) {
	return s.orders.FindByIdentifier(ctx, identifier)
}

// VerificationResult answers the post-payment redirect page without
// re-trusting client state.
type VerificationResult struct {
	Valid   bool   `json:"valid"`
	OrderID string `json:"orderId,omitempty"`
	StoreID string `json:"id,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// Verify reports whether the identified order exists and is in a paid or
// later fulfillment status.
func (s *OrderService) Verify(ctx context.Context, identifier string) (*VerificationResult, error) {
	order, err := s.orders.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	result := &VerificationResult{
		Valid:   entity.OrderVerifiable(order.Status),
		OrderID: order.OrderID,
		StoreID: order.ID,
		Status:  order.Status,
	}
	if result.Valid {
		result.Message = "Order is valid"
	} else {
		result.Message = "Order has not been paid"
	}
	return result, nil
}

// RecentByUser returns the latest orders for an account.
func (s *OrderService) RecentByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.orders.FindRecentByUser(ctx, userID, limit)
}

// HandleOrderPlaced consumes OrderPlaced events: it sends the confirmation
// email (best-effort) and publishes OrderConfirmed for fulfillment.
func (s *OrderService) HandleOrderPlaced(ctx context.Context, event *entity.OrderPlaced) error {
	slog.Info("Service: Handling OrderPlaced", "order_id", event.OrderID, "total", event.Total)

	if s.notifier != nil {
		order := &entity.Order{
			OrderID:   event.OrderID,
			Items:     event.Items,
			Customer:  event.Customer,
			Subtotal:  event.Subtotal,
			Shipping:  event.Shipping,
			Total:     event.Total,
			CreatedAt: event.PlacedAt,
		}
		if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
			// Email failure never blocks the pipeline.
			slog.Error("Failed to send confirmation email", "order_id", event.OrderID, "err", err)
		}
	}

	confirmed := entity.OrderConfirmed{
		OrderID:     event.OrderID,
		ConfirmedAt: time.Now(),
	}
	if s.publisher != nil {
		if err := s.publisher.PublishEvent(ctx, messaging.TopicOrdersConfirmed, event.OrderID, confirmed); err != nil {
			return fmt.Errorf("failed to publish OrderConfirmed: %w", err)
		}
	}
	return nil
}

// HandleOrderConfirmed advances the order into fulfillment: paid -> processing.
func (s *OrderService) HandleOrderConfirmed(ctx context.Context, event *entity.OrderConfirmed) error {
	slog.Info("Service: Handling OrderConfirmed", "order_id", event.OrderID)

	if err := s.orders.UpdateStatus(ctx, event.OrderID, entity.OrderStatusProcessing); err != nil {
		return fmt.Errorf("failed to advance order %s: %w", event.OrderID, err)
	}
	return nil
}
