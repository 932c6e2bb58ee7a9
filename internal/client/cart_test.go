package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartService_AddItem(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method

		var req addItemRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "p1", req.ProductID)
		assert.Equal(t, 2, req.Quantity)

		respondCart(w, http.StatusOK, domain.Cart{Items: []domain.LineItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		}})
	}))
	defer server.Close()

	c := NewCartService(server.URL, nil, StaticToken("tok-123"))

	cart, err := c.AddItem(context.Background(), domain.LineItem{
		ProductID: "p1",
		UnitPrice: decimal.RequireFromString("9.99"),
		Quantity:  2,
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "/api/v1/cart/add", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestCartService_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/cart", r.URL.Path)
		respondCart(w, http.StatusOK, domain.Cart{UserID: "u1"})
	}))
	defer server.Close()

	c := NewCartService(server.URL, nil, StaticToken("tok-123"))
	cart, err := c.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
}

func TestCartService_RemoveItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/cart/p1", r.URL.Path)
		respondCart(w, http.StatusOK, domain.Cart{})
	}))
	defer server.Close()

	c := NewCartService(server.URL, nil, StaticToken("tok-123"))
	cart, err := c.RemoveItem(context.Background(), "p1")

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCartService_RemoteErrorCarriesServiceMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"quantity exceeds stock"}`))
	}))
	defer server.Close()

	c := NewCartService(server.URL, nil, StaticToken("tok-123"))
	_, err := c.UpdateItem(context.Background(), "p1", 99)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
	assert.Equal(t, "quantity exceeds stock", remoteErr.Message)
}

func TestCartService_RemoteErrorFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewCartService(server.URL, nil, StaticToken("tok-123"))
	_, err := c.Get(context.Background())

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "remote service returned status 500", remoteErr.Error())
}

func TestCartService_MissingTokenSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := NewCartService(server.URL, nil, ContextTokens{})

	// Context without a credential: redirect-to-login, no call made.
	_, err := c.Get(context.Background())

	require.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, int32(0), hits.Load())
}

func TestCartService_ContextTokenIsUsed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		respondCart(w, http.StatusOK, domain.Cart{})
	}))
	defer server.Close()

	c := NewCartService(server.URL, nil, ContextTokens{})
	ctx := WithToken(context.Background(), "session-token")

	_, err := c.Get(ctx)
	require.NoError(t, err)
}

func TestCartService_NetworkErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	c := NewCartService(server.URL, nil, StaticToken("tok-123"))
	_, err := c.Get(context.Background())

	require.ErrorIs(t, err, ErrNetwork)
}

func respondCart(w http.ResponseWriter, status int, cart domain.Cart) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(cart)
}
