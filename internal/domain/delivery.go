package domain

import "strings"

// DeliveryDetails is forwarded to the order service as an opaque payload.
// Instructions is the only optional field.
type DeliveryDetails struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Phone        string `json:"phone"`
	Instructions string `json:"instructions,omitempty"`
}

func (d DeliveryDetails) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(d.Address) == "" {
		return &ValidationError{Field: "address", Reason: "is required"}
	}
	if strings.TrimSpace(d.City) == "" {
		return &ValidationError{Field: "city", Reason: "is required"}
	}
	if strings.TrimSpace(d.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "is required"}
	}
	return nil
}
