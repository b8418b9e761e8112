package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cozybakes/storefront/internal/cart"
	"github.com/cozybakes/storefront/internal/domain"
	"github.com/cozybakes/storefront/internal/payments"
)

// ProductCatalog is the slice of the catalog checkout needs: current price
// and availability for each cart entry.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type SessionCreator interface {
	CreateSession(ctx context.Context, req payments.SessionRequest) (*payments.Session, error)
}

type OrderCreator interface {
	Create(ctx context.Context, order *domain.Order) error
}

type CheckoutHandler struct {
	carts    cart.Store
	products ProductCatalog
	repo     OrderCreator
	payments SessionCreator
	logger   *slog.Logger
}

func NewCheckoutHandler(carts cart.Store, products ProductCatalog, repo OrderCreator, sessions SessionCreator, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		products: products,
		repo:     repo,
		payments: sessions,
		logger:   logger,
	}
}

type checkoutRequest struct {
	DeliveryAddress     string `json:"delivery_address"`
	Phone               string `json:"phone"`
	SpecialInstructions string `json:"special_instructions"`
}

type checkoutResponse struct {
	OrderID string `json:"order_id"`
	URL     string `json:"url"`
}

// HandleCheckout turns the user's cart into an order with captured unit
// prices and hands back the payment provider's redirect URL. The payment
// session itself is opaque: a URL to open, or a failure.
func (h *CheckoutHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID := cart.UserID(r)
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "missing user identity")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DeliveryAddress == "" || req.Phone == "" {
		h.writeError(w, http.StatusBadRequest, "delivery address and phone are required")
		return
	}

	items, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(items) == 0 {
		h.writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}

	var orderItems []domain.OrderItem
	var total int64
	for _, item := range items {
		product, err := h.products.GetByID(r.Context(), item.ProductID)
		if err != nil {
			h.logger.Error("failed to fetch product", "error", err, "product_id", item.ProductID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if product == nil || !product.Available {
			h.writeError(w, http.StatusConflict, "product no longer available: "+item.ProductID)
			return
		}

		orderItems = append(orderItems, domain.OrderItem{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		total += int64(item.Quantity) * product.Price
	}

	session, err := h.payments.CreateSession(r.Context(), payments.SessionRequest{
		Amount:   total,
		Currency: "usd",
	})
	if err != nil {
		h.logger.Error("failed to create payment session", "error", err, "user_id", userID)
		h.writeError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}

	order := &domain.Order{
		UserID:              userID,
		DeliveryAddress:     req.DeliveryAddress,
		Phone:               req.Phone,
		SpecialInstructions: req.SpecialInstructions,
		Items:               orderItems,
		Total:               total,
		PaymentSessionID:    session.ID,
		CreatedAt:           time.Now().UTC(),
	}

	if err := h.repo.Create(r.Context(), order); err != nil {
		h.logger.Error("failed to create order", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("checkout started", "order_id", order.ID, "user_id", userID, "total", total)
	h.writeJSON(w, http.StatusOK, checkoutResponse{OrderID: order.ID, URL: session.URL})
}

func (h *CheckoutHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
