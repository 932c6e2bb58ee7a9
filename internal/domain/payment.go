package domain

import "strings"

type PaymentMethod string

const (
	PaymentMethodMpesa  PaymentMethod = "mpesa"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentDetails carries the selected method and its method-specific fields.
// Everything except the method itself is forwarded opaquely; only the mpesa
// flow is driven by this client, card and wallet are collected and passed on.
type PaymentDetails struct {
	Method     PaymentMethod `json:"method"`
	Phone      string        `json:"phone,omitempty"`
	CardNumber string        `json:"card_number,omitempty"`
	Expiry     string        `json:"expiry,omitempty"`
	CVV        string        `json:"cvv,omitempty"`
	Provider   string        `json:"provider,omitempty"`
}

func (p PaymentDetails) Validate() error {
	switch p.Method {
	case PaymentMethodMpesa:
		if strings.TrimSpace(p.Phone) == "" {
			return &ValidationError{Field: "phone", Reason: "is required for mpesa payments"}
		}
	case PaymentMethodCard:
		if strings.TrimSpace(p.CardNumber) == "" {
			return &ValidationError{Field: "card_number", Reason: "is required for card payments"}
		}
		if strings.TrimSpace(p.Expiry) == "" {
			return &ValidationError{Field: "expiry", Reason: "is required for card payments"}
		}
		if strings.TrimSpace(p.CVV) == "" {
			return &ValidationError{Field: "cvv", Reason: "is required for card payments"}
		}
	case PaymentMethodWallet:
		if strings.TrimSpace(p.Provider) == "" {
			return &ValidationError{Field: "provider", Reason: "is required for wallet payments"}
		}
	case "":
		return &ValidationError{Field: "method", Reason: "no payment method selected"}
	default:
		return &ValidationError{Field: "method", Reason: "unknown payment method " + string(p.Method)}
	}
	return nil
}
