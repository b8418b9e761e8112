package notify

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("notify")

// SentMarker is the durable record of confirmation emails already delivered.
// MarkNotified is an atomic check-and-set keyed by order id: the first caller
// wins and sends, every later caller sees already=true.
type SentMarker interface {
	MarkNotified(ctx context.Context, orderID string) (already bool, err error)
	ClearNotified(ctx context.Context, orderID string) error
}

// Service is the confirmation pipeline: resolve, claim the sent marker,
// dispatch. Both trigger paths (the payment-return page and the order.paid
// worker) go through here, so a duplicate trigger collapses into a single
// send.
type Service struct {
	resolver   *Resolver
	dispatcher *Dispatcher
	marker     SentMarker
	logger     *slog.Logger

	sentCounter   metric.Int64Counter
	failedCounter metric.Int64Counter
}

func NewService(resolver *Resolver, dispatcher *Dispatcher, marker SentMarker, logger *slog.Logger) *Service {
	sent, _ := meter.Int64Counter("confirmation_emails_sent_total",
		metric.WithDescription("Confirmation emails handed to the mail transport successfully"))
	failed, _ := meter.Int64Counter("confirmation_emails_failed_total",
		metric.WithDescription("Confirmation email attempts that ended in a failure"))

	return &Service{
		resolver:      resolver,
		dispatcher:    dispatcher,
		marker:        marker,
		logger:        logger,
		sentCounter:   sent,
		failedCounter: failed,
	}
}

// SendConfirmation resolves the order and sends its confirmation email at
// most once. A repeat call for an already-notified order is an idempotent
// success with no send. A delivery failure releases the marker best-effort so
// a human-triggered retry (a page reload) can succeed.
func (s *Service) SendConfirmation(ctx context.Context, orderID string) error {
	payload, err := s.resolver.Resolve(ctx, orderID)
	if err != nil {
		s.failedCounter.Add(ctx, 1)
		return err
	}

	already, err := s.marker.MarkNotified(ctx, orderID)
	if err != nil {
		s.failedCounter.Add(ctx, 1)
		return err
	}
	if already {
		s.logger.Info("confirmation already sent, skipping", "order_id", orderID)
		return nil
	}

	if err := s.dispatcher.Dispatch(ctx, payload); err != nil {
		if clearErr := s.marker.ClearNotified(ctx, orderID); clearErr != nil {
			s.logger.Error("failed to release sent marker after delivery failure",
				"error", clearErr, "order_id", orderID)
		}
		s.failedCounter.Add(ctx, 1)
		return err
	}

	s.sentCounter.Add(ctx, 1)
	return nil
}
