package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// UserID returns the authenticated user for a request. Authentication itself
// happens upstream; this service trusts the identity header it is handed.
func UserID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	items, err := h.store.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get cart", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

type setItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleSetItem(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req setItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	if err := h.store.SetQuantity(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		h.logger.Error("failed to update cart", "error", err, "user_id", userID, "product_id", req.ProductID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	items, err := h.store.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get updated cart", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart updated", "user_id", userID, "product_id", req.ProductID, "quantity", req.Quantity)
	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	if err := h.store.Clear(r.Context(), userID); err != nil {
		h.logger.Error("failed to clear cart", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart cleared", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
