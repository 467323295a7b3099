package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/habscollection/storefront/internal/config"
	httpDelivery "github.com/habscollection/storefront/internal/delivery/http"
	"github.com/habscollection/storefront/internal/entity"
	"github.com/habscollection/storefront/internal/messaging"
	"github.com/habscollection/storefront/internal/messaging/kafka"
	"github.com/habscollection/storefront/internal/metrics"
	"github.com/habscollection/storefront/internal/notification"
	"github.com/habscollection/storefront/internal/payment/stripe"
	"github.com/habscollection/storefront/internal/repository"
	"github.com/habscollection/storefront/internal/repository/memory"
	"github.com/habscollection/storefront/internal/repository/postgres"
	"github.com/habscollection/storefront/internal/service"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- Storage ---
	var (
		productRepo repository.ProductRepository
		stockRepo   repository.StockRepository
		cartRepo    repository.CartRepository
		orderRepo   repository.OrderRepository
		userRepo    repository.UserRepository
	)
	if cfg.Storage == "memory" {
		products := memory.NewProductStore()
		productRepo = products
		stockRepo = products
		cartRepo = memory.NewCartStore()
		orderRepo = memory.NewOrderStore(products)
		userRepo = memory.NewUserStore()
		slog.Info("Using in-memory storage")
	} else {
		db, err := postgres.InitDB(cfg.Database.URL)
		if err != nil {
			slog.Error("Failed to init database", "err", err)
			os.Exit(1)
		}
		defer db.Close()

		productRepo = postgres.NewProductRepository(db)
		stockRepo = postgres.NewStockRepository(db)
		cartRepo = postgres.NewCartRepository(db)
		orderRepo = postgres.NewOrderRepository(db)
		userRepo = postgres.NewUserRepository(db)
	}

	if err := productRepo.Seed(ctx, seedData); err != nil {
		slog.Error("Failed to seed products", "err", err)
		os.Exit(1)
	}

	// --- Messaging ---
	var publisher messaging.Publisher
	var subscriber messaging.Subscriber
	if cfg.Kafka.Enabled {
		pub, sub, closeBroker := kafka.NewBroker(cfg.Kafka.Brokers)
		defer closeBroker()
		publisher = pub
		subscriber = sub
	}

	// --- Notification ---
	var notifier notification.Notifier
	if cfg.SMTP.Enabled {
		n, err := notification.NewEmailNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		if err != nil {
			slog.Error("Failed to init email notifier", "err", err)
			os.Exit(1)
		}
		notifier = n
	}

	// --- Payment gateway ---
	var gatewayOpts []stripe.Option
	if cfg.Stripe.BaseURL != "" {
		gatewayOpts = append(gatewayOpts, stripe.WithBaseURL(cfg.Stripe.BaseURL))
	}
	gateway := stripe.New(cfg.Stripe.SecretKey, gatewayOpts...)

	// --- Services ---
	m := metrics.New(prometheus.DefaultRegisterer)

	catalogSvc := service.NewCatalogService(productRepo, stockRepo)
	cartSvc := service.NewCartService(cartRepo)
	checkoutSvc := service.NewCheckoutService(cartSvc, orderRepo, gateway, publisher, notifier, m, cfg.Currency)
	orderSvc := service.NewOrderService(orderRepo, publisher, notifier)
	authSvc := service.NewAuthService(userRepo, service.NewSessionStore(7*24*time.Hour))

	// --- HTTP ---
	handler := httpDelivery.NewHandler(catalogSvc, cartSvc, checkoutSvc, orderSvc, authSvc, cfg.Stripe.PublishableKey)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpDelivery.EnableCORS(mux),
	}

	// --- Consumers ---
	// orders.placed: send the confirmation email and emit orders.confirmed.
	// orders.confirmed: advance the order into fulfillment.
	if subscriber != nil {
		go subscriber.Consume(ctx, messaging.TopicOrdersPlaced, "storefront-placed", func(ctx context.Context, payload []byte) error {
			var event entity.OrderPlaced
			if err := json.Unmarshal(payload, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return orderSvc.HandleOrderPlaced(ctx, &event)
		})

		go subscriber.Consume(ctx, messaging.TopicOrdersConfirmed, "storefront-confirmed", func(ctx context.Context, payload []byte) error {
			var event entity.OrderConfirmed
			if err := json.Unmarshal(payload, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderConfirmed event: %w", err)
			}
			return orderSvc.HandleOrderConfirmed(ctx, &event)
		})

		slog.Info("Kafka consumers started", "brokers", cfg.Kafka.Brokers)
	}

	go func() {
		slog.Info("HTTP server starting", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}
