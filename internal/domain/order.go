package domain

import "github.com/shopspring/decimal"

// Order is the payload submitted to the order service once delivery details
// are validated and payment (when applicable) is confirmed.
type Order struct {
	Items           []LineItem      `json:"items"`
	DeliveryDetails DeliveryDetails `json:"delivery_details"`
	PaymentDetails  PaymentDetails  `json:"payment_details"`
	Total           decimal.Decimal `json:"total"`
}
