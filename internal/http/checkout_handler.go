package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/client"
	"github.com/fjod/go_storefront/internal/domain"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	carts    Carts
	checkout *checkout.Service
	timeout  time.Duration
	logger   *zap.Logger
}

// NewCheckoutHandler builds the checkout endpoint. The timeout has to cover
// the whole payment confirmation window (attempts times interval), not just
// a single round trip.
func NewCheckoutHandler(carts Carts, svc *checkout.Service, timeout time.Duration, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{
		carts:    carts,
		checkout: svc,
		timeout:  timeout,
		logger:   logger,
	}
}

type CheckoutRequestDTO struct {
	DeliveryDetails domain.DeliveryDetails `json:"delivery_details"`
	PaymentDetails  domain.PaymentDetails  `json:"payment_details"`
}

type CheckoutResponseDTO struct {
	OrderID     string `json:"order_id"`
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	Total       string `json:"total"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID, ok := client.TokenFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer credential")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, err := h.carts.Open(ctx, sessionID)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.checkout.Checkout(ctx, cart, checkout.Request{
		Delivery: req.DeliveryDetails,
		Payment:  req.PaymentDetails,
	})
	if err != nil {
		h.logger.Warn("checkout failed",
			zap.String("request_id", getRequestID(r.Context())), zap.Error(err))
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID:     result.OrderID,
		Subtotal:    result.Subtotal.StringFixed(2),
		DeliveryFee: result.DeliveryFee.StringFixed(2),
		Total:       result.Total.StringFixed(2),
	})
}
