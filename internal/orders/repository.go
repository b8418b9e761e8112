package orders

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/cozybakes/storefront/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its line items in one transaction. Orders are
// immutable after creation except for the payment-confirmation flag.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, delivery_address, phone, special_instructions,
			total, payment_session_id, payment_confirmed, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, FALSE, $8)
	`, order.ID, order.UserID, order.DeliveryAddress, order.Phone, order.SpecialInstructions,
		order.Total, order.PaymentSessionID, order.CreatedAt)
	if err != nil {
		return err
	}

	for i := range order.Items {
		order.Items[i].ID = uuid.New().String()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, order.Items[i].ID, order.ID, order.Items[i].ProductID, order.Items[i].Quantity, order.Items[i].UnitPrice)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}
	var instructions sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, delivery_address, phone, special_instructions,
			total, payment_session_id, payment_confirmed, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.UserID, &order.DeliveryAddress, &order.Phone, &instructions,
		&order.Total, &order.PaymentSessionID, &order.PaymentConfirmed, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	order.SpecialInstructions = instructions.String

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

// OrderIDBySessionToken maps a payment session token to the order it paid for.
// Session tokens are unique per successful checkout attempt, so this returns
// at most one row; "" means no order matches.
func (r *OrderRepository) OrderIDBySessionToken(ctx context.Context, sessionToken string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE payment_session_id = $1
	`, sessionToken).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// ConfirmPayment flips the payment-confirmation flag for the order matching
// the session token and returns its id, or "" when no order matches.
func (r *OrderRepository) ConfirmPayment(ctx context.Context, sessionToken string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		UPDATE orders SET payment_confirmed = TRUE
		WHERE payment_session_id = $1
		RETURNING id
	`, sessionToken).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return id, nil
}

// MarkNotified records that a confirmation email has been sent for the order.
// The insert is the check-and-set: a second call for the same order reports
// already=true and must not trigger another send.
func (r *OrderRepository) MarkNotified(ctx context.Context, orderID string) (already bool, err error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO order_notifications (order_id, sent_at)
		VALUES ($1, $2)
		ON CONFLICT (order_id) DO NOTHING
	`, orderID, time.Now().UTC())
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 0, nil
}

// ClearNotified removes the sent marker so a later attempt can retry after a
// delivery failure.
func (r *OrderRepository) ClearNotified(ctx context.Context, orderID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM order_notifications WHERE order_id = $1
	`, orderID)
	return err
}
