package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	// OrderStatusPlaced means the order was recorded locally; confirmation
	// happens out of band (the shop calls the customer back).
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
)

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Order is an immutable record of a finalized cart. Items hold their own
// copy of the cart lines; nothing mutates an order after it is appended to
// the ledger.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	Items     []CartLine  `json:"items"`
	Total     float64     `json:"total"`
	Currency  string      `json:"currency"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
