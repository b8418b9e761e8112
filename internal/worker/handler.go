package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cozybakes/storefront/internal/domain"
	"github.com/cozybakes/storefront/internal/notify"
)

type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, orderID string) error
}

// ConfirmationHandler is the server-side trigger path: it reacts to order.paid
// events instead of waiting for the customer's browser to land on the success
// page. The durable sent marker makes the two paths converge on one email.
type ConfirmationHandler struct {
	service ConfirmationSender
	logger  *slog.Logger
}

func NewConfirmationHandler(service ConfirmationSender, logger *slog.Logger) *ConfirmationHandler {
	return &ConfirmationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ConfirmationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPaidEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order paid event: %w", err)
	}

	h.logger.Info("processing order paid event", "order_id", event.OrderID)

	err := h.service.SendConfirmation(ctx, event.OrderID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, notify.ErrOrderNotFound), errors.Is(err, notify.ErrRecipientUnknown):
		// Not retryable; redelivering the event would not change the outcome.
		h.logger.Error("confirmation not possible for order", "error", err, "order_id", event.OrderID)
		return nil
	case errors.Is(err, notify.ErrDeliveryFailed):
		// No automatic retries: the customer's page reload is the retry
		// mechanism, and the sent marker keeps it safe.
		h.logger.Error("confirmation delivery failed", "error", err, "order_id", event.OrderID)
		return nil
	default:
		return fmt.Errorf("send confirmation for order %s: %w", event.OrderID, err)
	}
}
