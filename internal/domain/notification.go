package domain

import "time"

// NotificationLine is one row of the confirmation email's item table. The name
// is snapshotted from the catalog at resolution time; the unit price is the one
// captured on the line item at purchase time.
type NotificationLine struct {
	ProductName string
	Quantity    int
	UnitPrice   int64
	LineTotal   int64
}

// NotificationPayload is derived and ephemeral. It is rebuilt per send attempt
// and never persisted.
type NotificationPayload struct {
	OrderID             string
	OrderReference      string
	OrderDate           time.Time
	DeliveryAddress     string
	Phone               string
	SpecialInstructions string
	CustomerName        string
	CustomerEmail       string
	Lines               []NotificationLine
	// Total is the order's stored total amount, authoritative for display
	// even when the sum of line totals disagrees.
	Total int64
}
