package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry in a cart.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Cart is the wire representation exchanged with the remote cart service.
type Cart struct {
	UserID    string     `json:"user_id,omitempty"`
	Items     []LineItem `json:"items"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
}
