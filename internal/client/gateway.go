package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/payment"
	"github.com/shopspring/decimal"
)

// PaymentGateway is the REST client for the push-payment provider. Initiate
// sends the STK push, Status is polled for the terminal result.
type PaymentGateway struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewPaymentGateway(baseURL string, httpClient *http.Client, tokens TokenSource) *PaymentGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PaymentGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

type stkPushRequest struct {
	PhoneNumber string          `json:"phone_number"`
	Amount      decimal.Decimal `json:"amount"`
}

type stkPushResponse struct {
	CheckoutRequestID string `json:"checkout_request_id"`
}

func (g *PaymentGateway) InitiateSTKPush(ctx context.Context, phoneNumber string, amount decimal.Decimal) (string, error) {
	body := stkPushRequest{
		// The gateway wants the full subscriber number with country code.
		PhoneNumber: "254" + phoneNumber,
		Amount:      amount,
	}

	var out stkPushResponse
	if err := g.do(ctx, http.MethodPost, "/api/v1/mpesa/stkpush", body, &out); err != nil {
		return "", err
	}
	if out.CheckoutRequestID == "" {
		return "", fmt.Errorf("gateway returned no checkout request id")
	}
	return out.CheckoutRequestID, nil
}

func (g *PaymentGateway) Status(ctx context.Context, checkoutRequestID string) (payment.StatusResult, error) {
	var out payment.StatusResult
	err := g.do(ctx, http.MethodGet, "/api/v1/mpesa/status/"+checkoutRequestID, nil, &out)
	return out, err
}

func (g *PaymentGateway) do(ctx context.Context, method, path string, body, out any) error {
	token, err := g.tokens.Token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNotAuthenticated
	}

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}
