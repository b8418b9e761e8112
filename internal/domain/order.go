package domain

import "time"

// OrderItem captures the unit price at purchase time. Line totals are always
// quantity times the captured price, regardless of later catalog changes.
type OrderItem struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

func (i OrderItem) LineTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

type Order struct {
	ID                  string      `json:"id"`
	UserID              string      `json:"user_id"`
	DeliveryAddress     string      `json:"delivery_address"`
	Phone               string      `json:"phone"`
	SpecialInstructions string      `json:"special_instructions,omitempty"`
	Items               []OrderItem `json:"items"`
	Total               int64       `json:"total"`
	PaymentSessionID    string      `json:"payment_session_id,omitempty"`
	PaymentConfirmed    bool        `json:"payment_confirmed"`
	CreatedAt           time.Time   `json:"created_at"`
}

// Reference is the short, human-shareable prefix of the order id used in
// subject lines and email headers.
func (o Order) Reference() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[:8]
}
