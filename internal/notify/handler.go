package notify

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Browser clients invoke this function directly after the payment redirect,
// so every response carries permissive CORS headers and preflights are
// answered before any business logic runs.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, orderID string) error
}

type Handler struct {
	service ConfirmationSender
	logger  *slog.Logger
}

func NewHandler(service ConfirmationSender, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type sendRequest struct {
	OrderID string `json:"orderId"`
}

// HandleSend is the invocation boundary of the confirmation pipeline. Every
// failure below it is caught here and converted into a structured error
// response; nothing propagates uncaught.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	for key, value := range corsHeaders {
		w.Header().Set(key, value)
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body")
		return
	}
	if req.OrderID == "" {
		h.writeError(w, "order id is required")
		return
	}

	if err := h.service.SendConfirmation(r.Context(), req.OrderID); err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			h.logger.Warn("order not found", "error", err, "order_id", req.OrderID)
			h.writeError(w, "order not found")
		case errors.Is(err, ErrRecipientUnknown):
			h.logger.Error("could not find user email", "error", err, "order_id", req.OrderID)
			h.writeError(w, "could not find user email")
		case errors.Is(err, ErrDeliveryFailed):
			h.logger.Error("confirmation delivery failed", "error", err, "order_id", req.OrderID)
			h.writeError(w, "failed to send confirmation email")
		default:
			h.logger.Error("confirmation pipeline error", "error", err, "order_id", req.OrderID)
			h.writeError(w, "internal error")
		}
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string) {
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": message})
}
