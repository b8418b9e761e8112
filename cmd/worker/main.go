package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/cozybakes/storefront/internal/catalog"
	"github.com/cozybakes/storefront/internal/identity"
	"github.com/cozybakes/storefront/internal/mail"
	"github.com/cozybakes/storefront/internal/messaging"
	"github.com/cozybakes/storefront/internal/notify"
	"github.com/cozybakes/storefront/internal/orders"
	"github.com/cozybakes/storefront/internal/telemetry"
	"github.com/cozybakes/storefront/internal/worker"
	"github.com/cozybakes/storefront/pkg/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}
	if cfg.KafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "confirmation-worker", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	db, err := telemetry.OpenDB("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var transport mail.Transport
	switch cfg.MailProvider {
	case "smtp":
		transport = mail.NewSMTPTransport(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword)
	default:
		transport = mail.NewResendTransport(cfg.ResendAPIKey, &http.Client{Timeout: 10 * time.Second})
	}

	orderRepo := orders.NewOrderRepository(db)
	productRepo := catalog.NewProductRepository(db)
	identityRepo := identity.NewRepository(db)

	resolver := notify.NewResolver(orderRepo, productRepo, identityRepo, logger)
	renderer := notify.NewRenderer(cfg.BrandName)
	dispatcher := notify.NewDispatcher(transport, renderer, cfg.FromAddress, logger)
	service := notify.NewService(resolver, dispatcher, orderRepo, logger)

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	consumer := messaging.NewConsumer(brokers, "order.paid", "confirmation-worker")
	defer func() { _ = consumer.Close() }()

	handler := worker.NewConfirmationHandler(service, logger)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting confirmation worker", "brokers", brokers)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
