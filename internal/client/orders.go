package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

// OrderService is the REST client for order submission.
type OrderService struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewOrderService(baseURL string, httpClient *http.Client, tokens TokenSource) *OrderService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OrderService{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
	}
}

type createOrderResponse struct {
	OrderID string `json:"order_id"`
}

// Create submits the order and returns the order id assigned by the service.
func (o *OrderService) Create(ctx context.Context, order *domain.Order) (string, error) {
	token, err := o.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}

	data, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal order failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/v1/orders", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := o.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return "", err
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response failed: %w", err)
	}
	return out.OrderID, nil
}
