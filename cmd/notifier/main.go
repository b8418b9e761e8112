package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cozybakes/storefront/internal/catalog"
	"github.com/cozybakes/storefront/internal/identity"
	"github.com/cozybakes/storefront/internal/mail"
	"github.com/cozybakes/storefront/internal/notify"
	"github.com/cozybakes/storefront/internal/orders"
	"github.com/cozybakes/storefront/internal/telemetry"
	"github.com/cozybakes/storefront/pkg/config"
)

func main() {
	ctx := context.Background()
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

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "notifier", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("notifier", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

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

	transport, err := newMailTransport(cfg)
	if err != nil {
		logger.Error("failed to configure mail transport", "error", err)
		os.Exit(1)
	}

	orderRepo := orders.NewOrderRepository(db)
	productRepo := catalog.NewProductRepository(db)
	identityRepo := identity.NewRepository(db)

	resolver := notify.NewResolver(orderRepo, productRepo, identityRepo, logger)
	renderer := notify.NewRenderer(cfg.BrandName)
	dispatcher := notify.NewDispatcher(transport, renderer, cfg.FromAddress, logger)
	service := notify.NewService(resolver, dispatcher, orderRepo, logger)
	handler := notify.NewHandler(service, logger)

	mux := http.NewServeMux()
	// All methods land here: OPTIONS is answered with CORS headers before any
	// business logic, everything else runs the pipeline.
	mux.HandleFunc("/send-order-confirmation", handler.HandleSend)
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(mux, "notifier",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting notifier service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func newMailTransport(cfg *config.Config) (mail.Transport, error) {
	switch cfg.MailProvider {
	case "smtp":
		return mail.NewSMTPTransport(cfg.SMTPAddr, cfg.SMTPUser, cfg.SMTPPassword), nil
	default:
		httpClient := &http.Client{Timeout: 10 * time.Second}
		return mail.NewResendTransport(cfg.ResendAPIKey, httpClient), nil
	}
}
