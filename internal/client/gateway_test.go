package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentGateway_InitiateSTKPush(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/mpesa/stkpush", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var req stkPushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "254712345678", req.PhoneNumber, "country code prefixed on the wire")
		assert.Equal(t, "70.00", req.Amount.StringFixed(2))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"checkout_request_id":"ws_CO_991"}`))
	}))
	defer server.Close()

	g := NewPaymentGateway(server.URL, nil, StaticToken("tok-123"))
	id, err := g.InitiateSTKPush(context.Background(), "712345678", decimal.RequireFromString("70.00"))

	require.NoError(t, err)
	assert.Equal(t, "ws_CO_991", id)
}

func TestPaymentGateway_InitiateRejectsEmptyCorrelationID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	g := NewPaymentGateway(server.URL, nil, StaticToken("tok-123"))
	_, err := g.InitiateSTKPush(context.Background(), "712345678", decimal.NewFromInt(70))

	require.Error(t, err)
}

func TestPaymentGateway_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/mpesa/status/ws_CO_991", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"FAILED","reason":"request cancelled by user"}`))
	}))
	defer server.Close()

	g := NewPaymentGateway(server.URL, nil, StaticToken("tok-123"))
	result, err := g.Status(context.Background(), "ws_CO_991")

	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, result.Status)
	assert.Equal(t, "request cancelled by user", result.Reason)
}

func TestPaymentGateway_StatusRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"transaction not found"}`))
	}))
	defer server.Close()

	g := NewPaymentGateway(server.URL, nil, StaticToken("tok-123"))
	_, err := g.Status(context.Background(), "nope")

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "transaction not found", remoteErr.Message)
}

func TestOrderService_Create(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Contains(t, payload, "items")
		assert.Contains(t, payload, "delivery_details")
		assert.Contains(t, payload, "payment_details")
		assert.Contains(t, payload, "total")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"order_id":"order-42"}`))
	}))
	defer server.Close()

	o := NewOrderService(server.URL, nil, StaticToken("tok-123"))
	orderID, err := o.Create(context.Background(), &domain.Order{
		Items: []domain.LineItem{{ProductID: "p1", UnitPrice: decimal.RequireFromString("30.00"), Quantity: 2}},
		DeliveryDetails: domain.DeliveryDetails{
			Name: "Jo Mwangi", Address: "12 Biashara St", City: "Nairobi", Phone: "712345678",
		},
		PaymentDetails: domain.PaymentDetails{Method: domain.PaymentMethodMpesa, Phone: "712345678"},
		Total:          decimal.RequireFromString("70.00"),
	})

	require.NoError(t, err)
	assert.Equal(t, "order-42", orderID)
}

func TestOrderService_CreateRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid total amount"}`))
	}))
	defer server.Close()

	o := NewOrderService(server.URL, nil, StaticToken("tok-123"))
	_, err := o.Create(context.Background(), &domain.Order{})

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "invalid total amount", remoteErr.Message)
}
