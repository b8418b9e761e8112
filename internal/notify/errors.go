package notify

import "errors"

// Failure taxonomy at the notification boundary. Collaborator errors are
// translated into one of these before they leave the package, so callers
// never depend on a provider's error shapes.
var (
	// ErrOrderNotFound: the session token or order id resolves to nothing.
	// Not automatically retryable; the webhook may simply not have landed yet.
	ErrOrderNotFound = errors.New("order not found")

	// ErrRecipientUnknown: no email address can be resolved for the owning
	// user. A hard stop, not recoverable.
	ErrRecipientUnknown = errors.New("recipient email unknown")

	// ErrDeliveryFailed: the mail transport rejected the message. The order
	// stays valid regardless; the underlying cause is preserved for logs.
	ErrDeliveryFailed = errors.New("delivery failed")
)
