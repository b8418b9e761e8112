package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cozybakes/storefront/internal/cart"
)

type SessionResolver interface {
	OrderIDBySessionToken(ctx context.Context, sessionToken string) (string, error)
}

type ConfirmationSender interface {
	SendOrderConfirmation(ctx context.Context, orderID string) error
}

// SuccessHandler serves the payment-provider return URL. By the time the
// customer lands here the payment has already succeeded upstream, so the
// response always reports success; the confirmation email is a secondary
// indicator that may read failed without affecting it.
type SuccessHandler struct {
	carts    cart.Store
	repo     SessionResolver
	notifier ConfirmationSender
	logger   *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewSuccessHandler(carts cart.Store, repo SessionResolver, notifier ConfirmationSender, logger *slog.Logger) *SuccessHandler {
	return &SuccessHandler{
		carts:    carts,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

type successResponse struct {
	PaymentStatus     string `json:"payment_status"`
	ConfirmationEmail string `json:"confirmation_email"`
}

const (
	emailSent    = "sent"
	emailFailed  = "failed"
	emailNotSent = "not_sent"
	emailPending = "pending"
)

func (h *SuccessHandler) HandleSuccess(w http.ResponseWriter, r *http.Request) {
	// The purchase is committed upstream; the cart goes away no matter what
	// happens to the notification.
	if userID := cart.UserID(r); userID != "" {
		if err := h.carts.Clear(r.Context(), userID); err != nil {
			h.logger.Error("failed to clear cart", "error", err, "user_id", userID)
		}
	}

	sessionToken := r.URL.Query().Get("session_id")
	if sessionToken == "" {
		h.writeJSON(w, successResponse{PaymentStatus: "succeeded", ConfirmationEmail: emailNotSent})
		return
	}

	if !h.acquire(sessionToken) {
		// Another request for the same session is already dispatching; do not
		// fire a second confirmation from this process.
		h.writeJSON(w, successResponse{PaymentStatus: "succeeded", ConfirmationEmail: emailPending})
		return
	}
	defer h.release(sessionToken)

	status := h.confirm(r.Context(), sessionToken)
	h.writeJSON(w, successResponse{PaymentStatus: "succeeded", ConfirmationEmail: status})
}

func (h *SuccessHandler) confirm(ctx context.Context, sessionToken string) string {
	orderID, err := h.repo.OrderIDBySessionToken(ctx, sessionToken)
	if err != nil {
		h.logger.Error("failed to resolve payment session", "error", err)
		return emailFailed
	}
	if orderID == "" {
		// Webhook not processed yet, or a stale token. The payment already
		// succeeded, so this degrades to a silent no-op.
		h.logger.Warn("no order for payment session", "session_token", sessionToken)
		return emailNotSent
	}

	if err := h.notifier.SendOrderConfirmation(ctx, orderID); err != nil {
		h.logger.Error("failed to send order confirmation", "error", err, "order_id", orderID)
		return emailFailed
	}

	h.logger.Info("order confirmation sent", "order_id", orderID)
	return emailSent
}

func (h *SuccessHandler) acquire(sessionToken string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.inflight[sessionToken]; ok {
		return false
	}
	h.inflight[sessionToken] = struct{}{}
	return true
}

func (h *SuccessHandler) release(sessionToken string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.inflight, sessionToken)
}

func (h *SuccessHandler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
