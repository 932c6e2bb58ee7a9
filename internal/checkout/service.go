package checkout

import (
	"context"
	"iter"
	"slices"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Cart is the slice of the line-item store the orchestrator needs: a
// snapshot to price and submit, and a clear once the order is accepted.
type Cart interface {
	All() iter.Seq[domain.LineItem]
	Clear(ctx context.Context) error
}

// PaymentConfirmer drives a push payment to a terminal state.
type PaymentConfirmer interface {
	Confirm(ctx context.Context, phoneNumber string, amount decimal.Decimal) error
}

// OrderClient submits the finished order.
type OrderClient interface {
	Create(ctx context.Context, order *domain.Order) (string, error)
}

type Request struct {
	Delivery domain.DeliveryDetails
	Payment  domain.PaymentDetails
}

type Result struct {
	OrderID     string
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

// Service sequences a checkout: validate, confirm payment when the method
// needs it, submit the order, clear the cart. Each stage is all-or-nothing;
// any failure leaves the cart exactly as it was.
type Service struct {
	confirmer PaymentConfirmer
	orders    OrderClient
	logger    *zap.Logger
}

func New(confirmer PaymentConfirmer, orders OrderClient, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{confirmer: confirmer, orders: orders, logger: logger}
}

func (s *Service) Checkout(ctx context.Context, cart Cart, req Request) (*Result, error) {
	items := slices.Collect(cart.All())
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := req.Delivery.Validate(); err != nil {
		return nil, err
	}
	if err := req.Payment.Validate(); err != nil {
		return nil, err
	}

	subtotal := pricing.Subtotal(cart.All())
	fee := pricing.DeliveryFee(subtotal, pricing.FreeDeliveryThreshold, pricing.FlatDeliveryFee)
	total := subtotal.Add(fee)

	if req.Payment.Method == domain.PaymentMethodMpesa {
		if err := s.confirmer.Confirm(ctx, req.Payment.Phone, total); err != nil {
			return nil, err
		}
	}

	order := &domain.Order{
		Items:           items,
		DeliveryDetails: req.Delivery,
		PaymentDetails:  req.Payment,
		Total:           total,
	}
	orderID, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	// The order exists from here on. A failed clear must not fail the
	// checkout, the next pull or expiry will reap the stale cart.
	if err := cart.Clear(ctx); err != nil {
		s.logger.Warn("order placed but cart clear failed",
			zap.String("order_id", orderID), zap.Error(err))
	}

	s.logger.Info("order placed",
		zap.String("order_id", orderID),
		zap.String("total", total.StringFixed(2)),
		zap.String("payment_method", req.Payment.Method.String()))

	return &Result{
		OrderID:     orderID,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       total,
	}, nil
}
