package webhook

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cozybakes/storefront/internal/domain"
)

type fakeConfirmer struct {
	orderIDs  map[string]string
	err       error
	confirmed []string
}

func (f *fakeConfirmer) ConfirmPayment(_ context.Context, sessionToken string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.confirmed = append(f.confirmed, sessionToken)
	return f.orderIDs[sessionToken], nil
}

type fakePublisher struct {
	err    error
	events []domain.OrderPaidEvent
	keys   []string
}

func (f *fakePublisher) Publish(_ context.Context, key string, event any) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	f.events = append(f.events, event.(domain.OrderPaidEvent))
	return nil
}

func newTestHandler(repo PaymentConfirmer, publisher EventPublisher) *Handler {
	return NewHandler(repo, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_HandlePaymentEvent(t *testing.T) {
	t.Run("confirms the payment and publishes order.paid", func(t *testing.T) {
		repo := &fakeConfirmer{orderIDs: map[string]string{"cs_1": "order-1"}}
		publisher := &fakePublisher{}
		handler := newTestHandler(repo, publisher)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{"type":"checkout.session.completed","session_id":"cs_1"}`))
		rec := httptest.NewRecorder()

		handler.HandlePaymentEvent(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if len(repo.confirmed) != 1 || repo.confirmed[0] != "cs_1" {
			t.Errorf("expected payment confirmed for cs_1, got %v", repo.confirmed)
		}
		if len(publisher.events) != 1 {
			t.Fatalf("expected 1 event published, got %d", len(publisher.events))
		}
		event := publisher.events[0]
		if event.OrderID != "order-1" || event.PaymentSessionID != "cs_1" {
			t.Errorf("unexpected event %+v", event)
		}
		if publisher.keys[0] != "order-1" {
			t.Errorf("events must be keyed by order id, got %q", publisher.keys[0])
		}
	})

	t.Run("ignores unrelated provider events", func(t *testing.T) {
		repo := &fakeConfirmer{orderIDs: map[string]string{}}
		handler := newTestHandler(repo, &fakePublisher{})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{"type":"invoice.created","session_id":"cs_1"}`))
		rec := httptest.NewRecorder()

		handler.HandlePaymentEvent(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if len(repo.confirmed) != 0 {
			t.Error("no payment must be confirmed for unrelated events")
		}
	})

	t.Run("responds 404 for an unknown session", func(t *testing.T) {
		handler := newTestHandler(&fakeConfirmer{orderIDs: map[string]string{}}, &fakePublisher{})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{"type":"checkout.session.completed","session_id":"cs_stale"}`))
		rec := httptest.NewRecorder()

		handler.HandlePaymentEvent(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("publish failure does not fail the webhook", func(t *testing.T) {
		repo := &fakeConfirmer{orderIDs: map[string]string{"cs_1": "order-1"}}
		handler := newTestHandler(repo, &fakePublisher{err: errors.New("broker unavailable")})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{"type":"checkout.session.completed","session_id":"cs_1"}`))
		rec := httptest.NewRecorder()

		handler.HandlePaymentEvent(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 despite publish failure, got %d", rec.Code)
		}
	})

	t.Run("works without a publisher configured", func(t *testing.T) {
		repo := &fakeConfirmer{orderIDs: map[string]string{"cs_1": "order-1"}}
		handler := newTestHandler(repo, nil)

		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{"type":"checkout.session.completed","session_id":"cs_1"}`))
		rec := httptest.NewRecorder()

		handler.HandlePaymentEvent(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("responds 400 for a malformed body", func(t *testing.T) {
		handler := newTestHandler(&fakeConfirmer{}, &fakePublisher{})

		req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", strings.NewReader(`{`))
		rec := httptest.NewRecorder()

		handler.HandlePaymentEvent(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}
