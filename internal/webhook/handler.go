package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cozybakes/storefront/internal/domain"
)

type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, sessionToken string) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Handler receives the payment provider's webhook, flips the order's
// payment-confirmation flag, and publishes order.paid for the worker.
type Handler struct {
	repo      PaymentConfirmer
	publisher EventPublisher
	logger    *slog.Logger
}

func NewHandler(repo PaymentConfirmer, publisher EventPublisher, logger *slog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

type webhookEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func (h *Handler) HandlePaymentEvent(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if event.Type != "checkout.session.completed" {
		// Other provider events carry nothing this flow cares about.
		w.WriteHeader(http.StatusOK)
		return
	}
	if event.SessionID == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	orderID, err := h.repo.ConfirmPayment(r.Context(), event.SessionID)
	if err != nil {
		h.logger.Error("failed to confirm payment", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if orderID == "" {
		h.logger.Warn("webhook for unknown payment session", "session_id", event.SessionID)
		h.writeError(w, http.StatusNotFound, "unknown payment session")
		return
	}

	if h.publisher != nil {
		paid := domain.OrderPaidEvent{
			OrderID:          orderID,
			PaymentSessionID: event.SessionID,
			Timestamp:        time.Now().UTC(),
		}
		if err := h.publisher.Publish(r.Context(), orderID, paid); err != nil {
			// The flag is already set; the page trigger still covers the email.
			h.logger.Error("failed to publish order paid event", "error", err, "order_id", orderID)
		}
	}

	h.logger.Info("payment confirmed", "order_id", orderID)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
