package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cozybakes/storefront/internal/domain"
	"github.com/cozybakes/storefront/internal/mail"
)

// Dispatcher renders a payload and submits it to the mail transport. It
// performs no deduplication of its own: two Dispatch calls for the same
// payload produce two identical sends. At-most-once lives one layer up, in
// the Service's durable sent marker.
type Dispatcher struct {
	transport mail.Transport
	renderer  *Renderer
	from      string
	logger    *slog.Logger
}

func NewDispatcher(transport mail.Transport, renderer *Renderer, from string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		renderer:  renderer,
		from:      from,
		logger:    logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, payload *domain.NotificationPayload) error {
	html, err := d.renderer.Render(payload)
	if err != nil {
		return err
	}

	messageID, err := d.transport.Send(ctx, mail.Message{
		From:    d.from,
		To:      payload.CustomerEmail,
		Subject: d.renderer.Subject(payload),
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	d.logger.Info("confirmation email sent",
		"order_id", payload.OrderID, "to", payload.CustomerEmail, "message_id", messageID)
	return nil
}
