package payment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 10
	DefaultInterval    = 5 * time.Second
)

// Local subscriber numbers: 9 digits, leading 7. The gateway client adds the
// country code on the wire.
var subscriberPattern = regexp.MustCompile(`^7\d{8}$`)

var (
	ErrInvalidPhoneNumber = &domain.ValidationError{
		Field:  "phone_number",
		Reason: "must be 9 digits starting with 7",
	}

	ErrCancelled = errors.New("payment was cancelled")

	// ErrTimedOut means the poll budget ran out while the gateway still
	// reported PENDING. The prompt may still resolve out-of-band.
	ErrTimedOut = errors.New("payment timed out, check your phone messages for the final status")

	ErrPollInProgress = errors.New("a payment confirmation is already in progress")
)

// FailedError carries the gateway's failure reason.
type FailedError struct {
	Reason string
}

func (e *FailedError) Error() string {
	if e.Reason == "" {
		return "payment failed"
	}
	return "payment failed: " + e.Reason
}

// StatusResult is one status snapshot from the gateway.
type StatusResult struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Gateway is the push-payment provider as seen by the poller.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, phoneNumber string, amount decimal.Decimal) (string, error)
	Status(ctx context.Context, checkoutRequestID string) (StatusResult, error)
}

// Poller drives one payment attempt to a terminal state: initiate the push,
// then query status at most maxAttempts times with a fixed delay between
// queries. The delay is a cooperative suspend, context cancellation aborts
// it. Only one confirmation may be in flight at a time.
type Poller struct {
	gateway     Gateway
	maxAttempts int
	interval    time.Duration
	sleep       func(context.Context, time.Duration) error
	logger      *zap.Logger
	busy        atomic.Bool
}

func NewPoller(gateway Gateway, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		gateway:     gateway,
		maxAttempts: DefaultMaxAttempts,
		interval:    DefaultInterval,
		sleep:       sleepContext,
		logger:      logger,
	}
}

// Confirm runs initiate and poll as one guarded unit. A second call while a
// confirmation is outstanding is rejected rather than queued.
func (p *Poller) Confirm(ctx context.Context, phoneNumber string, amount decimal.Decimal) error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrPollInProgress
	}
	defer p.busy.Store(false)

	checkoutRequestID, err := p.Initiate(ctx, phoneNumber, amount)
	if err != nil {
		return err
	}
	return p.poll(ctx, checkoutRequestID)
}

// Initiate validates the subscriber number locally and sends the push
// request. A malformed number never reaches the gateway.
func (p *Poller) Initiate(ctx context.Context, phoneNumber string, amount decimal.Decimal) (string, error) {
	if !subscriberPattern.MatchString(phoneNumber) {
		return "", ErrInvalidPhoneNumber
	}

	checkoutRequestID, err := p.gateway.InitiateSTKPush(ctx, phoneNumber, amount)
	if err != nil {
		return "", err
	}

	p.logger.Info("push payment initiated",
		zap.String("checkout_request_id", checkoutRequestID),
		zap.String("amount", amount.StringFixed(2)))
	return checkoutRequestID, nil
}

// Poll queries the gateway until a terminal status or the attempt budget is
// exhausted.
func (p *Poller) Poll(ctx context.Context, checkoutRequestID string) error {
	if !p.busy.CompareAndSwap(false, true) {
		return ErrPollInProgress
	}
	defer p.busy.Store(false)
	return p.poll(ctx, checkoutRequestID)
}

func (p *Poller) poll(ctx context.Context, checkoutRequestID string) error {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		result, err := p.gateway.Status(ctx, checkoutRequestID)
		if err != nil {
			return err
		}

		switch result.Status {
		case StatusCompleted:
			p.logger.Info("payment completed",
				zap.String("checkout_request_id", checkoutRequestID),
				zap.Int("attempts", attempt))
			return nil
		case StatusFailed:
			return &FailedError{Reason: result.Reason}
		case StatusCancelled:
			return ErrCancelled
		case StatusPending:
			p.logger.Debug("payment still pending",
				zap.String("checkout_request_id", checkoutRequestID),
				zap.Int("attempt", attempt))
		default:
			return fmt.Errorf("unexpected payment status %q", result.Status)
		}

		// Sleep only between attempts, never after the last one.
		if attempt < p.maxAttempts {
			if err := p.sleep(ctx, p.interval); err != nil {
				return err
			}
		}
	}
	return ErrTimedOut
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
