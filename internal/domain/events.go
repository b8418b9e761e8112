package domain

import "time"

type OrderPaidEvent struct {
	OrderID          string    `json:"order_id"`
	PaymentSessionID string    `json:"payment_session_id"`
	Timestamp        time.Time `json:"timestamp"`
}
