package http

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/checkout"
	"github.com/fjod/go_storefront/internal/client"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/payment"
	"github.com/fjod/go_storefront/internal/pricing"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartSession is the per-session cart as the handlers see it. Both the
// local store and the remote-reconciled synchronizer satisfy it.
type CartSession interface {
	Add(ctx context.Context, item domain.LineItem) error
	SetQuantity(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
	All() iter.Seq[domain.LineItem]
}

// Carts resolves the cart for a session. Which authority model backs it
// (local keyed storage or remote cart service) is a deployment decision
// made at wiring time.
type Carts interface {
	Open(ctx context.Context, sessionID string) (CartSession, error)
}

type CartHandler struct {
	carts   Carts
	timeout time.Duration
	logger  *zap.Logger
}

func NewCartHandler(carts Carts, timeout time.Duration, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartSummaryDTO is what the UI renders: the items plus the priced summary.
// Amounts are rounded to two places here and nowhere earlier.
type CartSummaryDTO struct {
	Items                    []CartItemDTO `json:"items"`
	Subtotal                 string        `json:"subtotal"`
	DeliveryFee              string        `json:"delivery_fee"`
	Total                    string        `json:"total"`
	RemainingForFreeDelivery string        `json:"remaining_for_free_delivery"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, ok := h.openCart(ctx, w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, summarize(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, ok := h.openCart(ctx, w)
	if !ok {
		return
	}

	err := cart.Add(ctx, domain.LineItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.Price,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, summarize(cart))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cart, ok := h.openCart(ctx, w)
	if !ok {
		return
	}

	// Quantity below 1 means removal, the store handles that.
	if err := cart.SetQuantity(ctx, productID, req.Quantity); err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	cart, ok := h.openCart(ctx, w)
	if !ok {
		return
	}

	if err := cart.Remove(ctx, productID); err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(cart))
}

// ClearCart empties the session's cart, used by the logout flow.
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, ok := h.openCart(ctx, w)
	if !ok {
		return
	}

	if err := cart.Clear(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summarize(cart))
}

func (h *CartHandler) openCart(ctx context.Context, w http.ResponseWriter) (CartSession, bool) {
	sessionID, ok := client.TokenFromContext(ctx)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer credential")
		return nil, false
	}

	cart, err := h.carts.Open(ctx, sessionID)
	if err != nil {
		h.handleError(w, nil, err)
		return nil, false
	}
	return cart, true
}

func (h *CartHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if r != nil {
		h.logger.Warn("cart request failed",
			zap.String("request_id", getRequestID(r.Context())), zap.Error(err))
	}
	handleError(w, err)
}

func summarize(cart CartSession) CartSummaryDTO {
	items := []CartItemDTO{}
	for item := range cart.All() {
		items = append(items, CartItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
		})
	}

	subtotal := pricing.Subtotal(cart.All())
	fee := pricing.DeliveryFee(subtotal, pricing.FreeDeliveryThreshold, pricing.FlatDeliveryFee)
	remaining := pricing.RemainingForFreeDelivery(subtotal, pricing.FreeDeliveryThreshold)

	return CartSummaryDTO{
		Items:                    items,
		Subtotal:                 subtotal.StringFixed(2),
		DeliveryFee:              fee.StringFixed(2),
		Total:                    subtotal.Add(fee).StringFixed(2),
		RemainingForFreeDelivery: remaining.StringFixed(2),
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleError maps the component error taxonomy onto HTTP statuses.
func handleError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	var failedErr *payment.FailedError
	var remoteErr *client.RemoteError

	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, "validation_error", validationErr.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, client.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "session expired, please log in again")
	case errors.Is(err, payment.ErrTimedOut):
		respondError(w, http.StatusGatewayTimeout, "payment_timeout", err.Error())
	case errors.Is(err, payment.ErrCancelled) || errors.As(err, &failedErr):
		respondError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, payment.ErrPollInProgress):
		respondError(w, http.StatusConflict, "payment_in_progress", err.Error())
	case errors.As(err, &remoteErr):
		respondError(w, remoteErr.StatusCode, "remote_error", remoteErr.Error())
	case errors.Is(err, client.ErrNetwork):
		respondError(w, http.StatusBadGateway, "network_error", "could not reach the service, check your connection")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
