package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// CartService is the REST client for the remote cart service. Every call
// attaches the session's bearer credential and returns the full updated cart
// on success, which supersedes local state (replace-on-success).
type CartService struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker[*domain.Cart]
}

func NewCartService(baseURL string, httpClient *http.Client, tokens TokenSource) *CartService {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CartService{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		breaker: gobreaker.NewCircuitBreaker[*domain.Cart](gobreaker.Settings{Name: "cart-service"}),
	}
}

type addItemRequest struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (c *CartService) Get(ctx context.Context) (*domain.Cart, error) {
	return c.call(ctx, http.MethodGet, "/api/v1/cart", nil)
}

func (c *CartService) AddItem(ctx context.Context, item domain.LineItem) (*domain.Cart, error) {
	body := addItemRequest{
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.UnitPrice,
		Quantity:  item.Quantity,
	}
	return c.call(ctx, http.MethodPost, "/api/v1/cart/add", body)
}

func (c *CartService) UpdateItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error) {
	return c.call(ctx, http.MethodPut, "/api/v1/cart/"+productID, updateItemRequest{Quantity: quantity})
}

func (c *CartService) RemoveItem(ctx context.Context, productID string) (*domain.Cart, error) {
	return c.call(ctx, http.MethodDelete, "/api/v1/cart/"+productID, nil)
}

func (c *CartService) call(ctx context.Context, method, path string, body any) (*domain.Cart, error) {
	// Resolve the credential before entering the breaker: a missing token is
	// a login redirect, not a service failure.
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	return c.breaker.Execute(func() (*domain.Cart, error) {
		return c.roundTrip(ctx, method, path, token, body)
	})
}

func (c *CartService) roundTrip(ctx context.Context, method, path, token string, body any) (*domain.Cart, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp); err != nil {
		return nil, err
	}

	var cart domain.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, fmt.Errorf("decode cart failed: %w", err)
	}
	return &cart, nil
}
