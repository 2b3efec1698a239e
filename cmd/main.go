package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	amqpAdapter "github.com/YelzhanWeb/qrdine/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/qrdine/internal/adapter/http"
	"github.com/YelzhanWeb/qrdine/internal/adapter/logger"
	"github.com/YelzhanWeb/qrdine/internal/adapter/metrics"
	"github.com/YelzhanWeb/qrdine/internal/adapter/postgres"
	"github.com/YelzhanWeb/qrdine/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/qrdine/internal/app/lookup"
	"github.com/YelzhanWeb/qrdine/internal/app/notify"
	"github.com/YelzhanWeb/qrdine/internal/app/order"
	"github.com/YelzhanWeb/qrdine/internal/app/outbox"
	"github.com/YelzhanWeb/qrdine/internal/app/status"
	"github.com/YelzhanWeb/qrdine/internal/app/table"
	"github.com/YelzhanWeb/qrdine/internal/config"
)

func main() {
	mode := flag.String("mode", "", "Service mode: order-service, notification-subscriber")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	// Optional .env for local development; config values reference the
	// environment through ${VAR} expansion.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	lgr := logger.New(*mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "order-service":
		err = runOrderService(ctx, cfg, lgr)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, lgr)
	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("service_failed", "Service exited with error", "", nil, err)
		os.Exit(1)
	}
	lgr.Info("service_stopped", "Service stopped gracefully", "", nil)
}

func runOrderService(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	db, err := postgres.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer db.Close()

	lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
		"host": cfg.Database.Host,
		"db":   cfg.Database.Database,
	})

	if err := postgres.ApplyMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	// Repositories
	venueRepo := postgres.NewVenueRepository(db)
	tableRepo := postgres.NewTableRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	staffRepo := postgres.NewStaffRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	store := postgres.NewStore(db)

	m := metrics.New("order_service")
	publisher := rabbitmq.NewPublisher(mqConn)

	// Services
	orderService := order.NewService(store, lgr, m, cfg.HTTP.PublicBaseURL)
	statusService := status.NewService(orderRepo, lgr, m)
	lookupService := lookup.NewService(orderRepo, venueRepo, tableRepo, lgr)
	tableService := table.NewService(tableRepo, lgr)
	relay := outbox.NewRelay(outboxRepo, publisher, lgr)

	// HTTP handlers
	auth := httpAdapter.NewAuthenticator(staffRepo)
	orderHandler := httpAdapter.NewOrderHandler(orderService, statusService, lookupService, auth, lgr)
	resolveHandler := httpAdapter.NewResolveHandler(cfg.HTTP.PublicBaseURL, lgr)
	tableHandler := httpAdapter.NewTableHandler(tableService, venueRepo, auth, cfg.HTTP.PublicBaseURL, lgr)
	webhookHandler := httpAdapter.NewWebhookHandler(statusService, lgr)

	mux := http.NewServeMux()
	mux.HandleFunc("/orders", orderHandler.CreateOrder)
	mux.HandleFunc("/orders/", orderHandler.HandleOrders)
	mux.HandleFunc("/resolve", resolveHandler.Resolve)
	mux.HandleFunc("/qr", resolveHandler.Generate)
	mux.HandleFunc("/tables", tableHandler.CreateTable)
	mux.HandleFunc("/webhooks/payment", webhookHandler.PaymentWebhook)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	handler := httpAdapter.MetricsMiddleware(m)(mux)
	handler = httpAdapter.LoggingMiddleware(lgr)(handler)
	handler = httpAdapter.RecoveryMiddleware(lgr)(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Order Service started on port %d", cfg.HTTP.Port), "startup", map[string]interface{}{
		"port": cfg.HTTP.Port,
	})

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gCtx)
	})
	g.Go(func() error {
		<-gCtx.Done()
		lgr.Info("shutdown_initiated", "Shutting down Order Service", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger) error {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer mqConn.Close()

	lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
		"host": cfg.RabbitMQ.Host,
	})

	m := metrics.New("notification_subscriber")
	dispatcher := notify.NewDispatcher(notify.ChannelsFor(cfg.Notifications.Channels, lgr), lgr, m)
	handler := amqpAdapter.NewNotificationHandler(dispatcher, lgr)
	consumer := rabbitmq.NewConsumer(mqConn, lgr)

	lgr.Info("service_started", "Notification Subscriber started", "startup", map[string]interface{}{
		"channels": cfg.Notifications.Channels,
	})

	return consumer.ConsumeOrderEvents(ctx, handler.HandleOrderEvent)
}
