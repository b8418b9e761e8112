package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cozybakes/storefront/internal/domain"
)

const fallbackCustomerName = "Valued Customer"

type OrderStore interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

type ProductStore interface {
	// NameByID returns "" when the product does not exist.
	NameByID(ctx context.Context, id string) (string, error)
}

type IdentityStore interface {
	DisplayName(ctx context.Context, userID string) (string, error)
	Email(ctx context.Context, userID string) (string, error)
}

// Resolver expands an order id into the denormalized payload one email needs.
// Product names are snapshotted at lookup time; unit prices come from the
// line items as captured at purchase time. That asymmetry is deliberate: a
// renamed product shows its new name, a repriced product does not change the
// amount the customer paid.
type Resolver struct {
	orders   OrderStore
	products ProductStore
	identity IdentityStore
	logger   *slog.Logger
}

func NewResolver(orders OrderStore, products ProductStore, identity IdentityStore, logger *slog.Logger) *Resolver {
	return &Resolver{
		orders:   orders,
		products: products,
		identity: identity,
		logger:   logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context, orderID string) (*domain.NotificationPayload, error) {
	order, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrOrderNotFound)
	}

	lines := make([]domain.NotificationLine, 0, len(order.Items))
	var computed int64
	for _, item := range order.Items {
		name, err := r.products.NameByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("fetch product %s: %w", item.ProductID, err)
		}
		if name == "" {
			return nil, fmt.Errorf("order %s: line item references missing product %s", orderID, item.ProductID)
		}

		lineTotal := item.LineTotal()
		computed += lineTotal
		lines = append(lines, domain.NotificationLine{
			ProductName: name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotal,
		})
	}

	// A mismatch is a data-integrity signal worth logging, but the stored
	// total stays authoritative for display and the send proceeds.
	if computed != order.Total {
		r.logger.Warn("order total mismatch",
			"order_id", orderID, "computed_total", computed, "stored_total", order.Total)
	}

	name, err := r.identity.DisplayName(ctx, order.UserID)
	if err != nil {
		r.logger.Warn("could not fetch customer profile", "error", err, "user_id", order.UserID)
		name = ""
	}
	if name == "" {
		name = fallbackCustomerName
	}

	email, err := r.identity.Email(ctx, order.UserID)
	if err != nil {
		return nil, fmt.Errorf("fetch email for user %s: %w", order.UserID, err)
	}
	if email == "" {
		return nil, fmt.Errorf("user %s: %w", order.UserID, ErrRecipientUnknown)
	}

	return &domain.NotificationPayload{
		OrderID:             order.ID,
		OrderReference:      order.Reference(),
		OrderDate:           order.CreatedAt,
		DeliveryAddress:     order.DeliveryAddress,
		Phone:               order.Phone,
		SpecialInstructions: order.SpecialInstructions,
		CustomerName:        name,
		CustomerEmail:       email,
		Lines:               lines,
		Total:               order.Total,
	}, nil
}
