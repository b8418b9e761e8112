//go:build integration

package test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/cozybakes/storefront/internal/cart"
	"github.com/cozybakes/storefront/internal/catalog"
	"github.com/cozybakes/storefront/internal/domain"
	"github.com/cozybakes/storefront/internal/identity"
	"github.com/cozybakes/storefront/internal/mail"
	"github.com/cozybakes/storefront/internal/notify"
	"github.com/cozybakes/storefront/internal/orders"
)

func TestProductCatalogSeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := catalog.NewProductRepository(db)

	products, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("failed to list products: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("expected 4 seeded products, got %d", len(products))
	}

	cookies, err := repo.List(ctx, "Cookies")
	if err != nil {
		t.Fatalf("failed to list cookies: %v", err)
	}
	if len(cookies) != 1 {
		t.Fatalf("expected 1 product in Cookies, got %d", len(cookies))
	}

	cake, err := repo.GetByID(ctx, "cake-chocolate-layer")
	if err != nil {
		t.Fatalf("failed to get product: %v", err)
	}
	if cake == nil {
		t.Fatal("product not found")
	}
	if cake.Price != 4599 {
		t.Fatalf("expected price 4599, got %d", cake.Price)
	}

	missing, err := repo.GetByID(ctx, "nope")
	if err != nil {
		t.Fatalf("unexpected error for missing product: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing product, got %+v", missing)
	}
}

func createUser(ctx context.Context, t *testing.T, pg *PostgresSetup, email, fullName string) string {
	t.Helper()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	userID := uuid.New().String()
	if _, err := db.ExecContext(ctx, `INSERT INTO users (id, email) VALUES ($1, NULLIF($2, ''))`, userID, email); err != nil {
		t.Fatalf("failed to insert user: %v", err)
	}
	if fullName != "" {
		if _, err := db.ExecContext(ctx, `INSERT INTO profiles (user_id, full_name) VALUES ($1, $2)`, userID, fullName); err != nil {
			t.Fatalf("failed to insert profile: %v", err)
		}
	}
	return userID
}

func testOrderFor(userID string) *domain.Order {
	return &domain.Order{
		UserID:              userID,
		DeliveryAddress:     "12 Main St",
		Phone:               "555-0100",
		SpecialInstructions: "Ring the bell",
		Items: []domain.OrderItem{
			{ProductID: "cookies-chocolate-chip", Quantity: 2, UnitPrice: 1299},
			{ProductID: "cake-chocolate-layer", Quantity: 1, UnitPrice: 4599},
		},
		Total:            7197,
		PaymentSessionID: "cs_" + uuid.New().String(),
		CreatedAt:        time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestOrderLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	userID := createUser(ctx, t, pg, "ada@example.com", "Ada Lovelace")
	repo := orders.NewOrderRepository(db)

	order := testOrderFor(userID)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	if order.ID == "" {
		t.Fatal("expected order ID to be set")
	}

	fetched, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to fetch order: %v", err)
	}
	if fetched == nil {
		t.Fatal("order not found")
	}
	if fetched.Total != 7197 {
		t.Fatalf("expected total 7197, got %d", fetched.Total)
	}
	if len(fetched.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(fetched.Items))
	}
	if fetched.SpecialInstructions != "Ring the bell" {
		t.Fatalf("unexpected special instructions %q", fetched.SpecialInstructions)
	}
	if fetched.PaymentConfirmed {
		t.Fatal("new order must not be payment confirmed")
	}

	resolved, err := repo.OrderIDBySessionToken(ctx, order.PaymentSessionID)
	if err != nil {
		t.Fatalf("failed to resolve session token: %v", err)
	}
	if resolved != order.ID {
		t.Fatalf("expected order %s for session token, got %q", order.ID, resolved)
	}

	stale, err := repo.OrderIDBySessionToken(ctx, "cs_stale")
	if err != nil {
		t.Fatalf("unexpected error for stale token: %v", err)
	}
	if stale != "" {
		t.Fatalf("expected no order for stale token, got %q", stale)
	}

	confirmed, err := repo.ConfirmPayment(ctx, order.PaymentSessionID)
	if err != nil {
		t.Fatalf("failed to confirm payment: %v", err)
	}
	if confirmed != order.ID {
		t.Fatalf("expected confirmed order %s, got %q", order.ID, confirmed)
	}

	fetched, err = repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to refetch order: %v", err)
	}
	if !fetched.PaymentConfirmed {
		t.Fatal("expected payment confirmed flag set")
	}
}

func TestNotificationMarker(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	userID := createUser(ctx, t, pg, "ada@example.com", "")
	repo := orders.NewOrderRepository(db)

	order := testOrderFor(userID)
	if err := repo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	already, err := repo.MarkNotified(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to mark notified: %v", err)
	}
	if already {
		t.Fatal("first mark must report not already sent")
	}

	already, err = repo.MarkNotified(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to re-mark notified: %v", err)
	}
	if !already {
		t.Fatal("second mark must report already sent")
	}

	if err := repo.ClearNotified(ctx, order.ID); err != nil {
		t.Fatalf("failed to clear marker: %v", err)
	}

	already, err = repo.MarkNotified(ctx, order.ID)
	if err != nil {
		t.Fatalf("failed to mark after clear: %v", err)
	}
	if already {
		t.Fatal("mark after clear must report not already sent")
	}
}

type mailCapture struct {
	mu       sync.Mutex
	requests []capturedMail
}

type capturedMail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (c *mailCapture) handler(w http.ResponseWriter, r *http.Request) {
	var req capturedMail
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"id":"email-1"}`)
}

func (c *mailCapture) emails() []capturedMail {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]capturedMail, len(c.requests))
	copy(result, c.requests)
	return result
}

func TestConfirmationEmailFlow(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	db, err := OpenDB(pg.ConnStr)
	if err != nil {
		t.Fatalf("failed to open DB: %v", err)
	}
	defer func() { _ = db.Close() }()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userID := createUser(ctx, t, pg, "ada@example.com", "Ada Lovelace")
	ordersRepo := orders.NewOrderRepository(db)

	order := testOrderFor(userID)
	if err := ordersRepo.Create(ctx, order); err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	capture := &mailCapture{}
	mailMux := http.NewServeMux()
	mailMux.HandleFunc("POST /emails", capture.handler)
	mailServer := httptest.NewServer(mailMux)
	defer mailServer.Close()

	transport := mail.NewResendTransportWithBaseURL(mailServer.URL, "re_test", mailServer.Client())
	resolver := notify.NewResolver(ordersRepo, catalog.NewProductRepository(db), identity.NewRepository(db), logger)
	dispatcher := notify.NewDispatcher(transport, notify.NewRenderer("Cozy Bakes"), "Cozy Bakes <orders@cozybakes.com>", logger)
	service := notify.NewService(resolver, dispatcher, ordersRepo, logger)

	if err := service.SendConfirmation(ctx, order.ID); err != nil {
		t.Fatalf("failed to send confirmation: %v", err)
	}

	emails := capture.emails()
	if len(emails) != 1 {
		t.Fatalf("expected 1 email, got %d", len(emails))
	}
	email := emails[0]
	if len(email.To) != 1 || email.To[0] != "ada@example.com" {
		t.Fatalf("unexpected recipients %v", email.To)
	}
	if !strings.HasPrefix(email.Subject, "Order Confirmation - Cozy Bakes (#") {
		t.Fatalf("unexpected subject %q", email.Subject)
	}
	if !strings.Contains(email.HTML, "Dear Ada Lovelace,") {
		t.Fatal("expected greeting with profile name")
	}
	if !strings.Contains(email.HTML, "$71.97") {
		t.Fatal("expected grand total in email body")
	}

	// The durable marker makes a second trigger a no-op.
	if err := service.SendConfirmation(ctx, order.ID); err != nil {
		t.Fatalf("failed on repeated trigger: %v", err)
	}
	if got := len(capture.emails()); got != 1 {
		t.Fatalf("expected a single email across both triggers, got %d", got)
	}
}

func TestCartRedisStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	addr, cleanup := SetupRedis(ctx, t)
	defer cleanup()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()

	store := cart.NewRedisStore(client)

	if err := store.SetQuantity(ctx, "user-1", "cookies-chocolate-chip", 2); err != nil {
		t.Fatalf("failed to set quantity: %v", err)
	}
	if err := store.SetQuantity(ctx, "user-1", "cake-chocolate-layer", 1); err != nil {
		t.Fatalf("failed to set quantity: %v", err)
	}

	items, err := store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to get cart: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ProductID != "cake-chocolate-layer" || items[1].ProductID != "cookies-chocolate-chip" {
		t.Fatalf("expected items sorted by product id, got %+v", items)
	}

	if err := store.SetQuantity(ctx, "user-1", "cookies-chocolate-chip", 0); err != nil {
		t.Fatalf("failed to remove item: %v", err)
	}
	items, err = store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to get cart: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after removal, got %d", len(items))
	}

	if err := store.Clear(ctx, "user-1"); err != nil {
		t.Fatalf("failed to clear cart: %v", err)
	}
	items, err = store.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to get cart: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty cart, got %+v", items)
	}
}

func TestKafkaConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	if len(brokers) == 0 {
		t.Fatal("expected at least one broker")
	}

	t.Logf("kafka brokers: %v", brokers)
}
