package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature_Valid(t *testing.T) {
	sig := sign("secret", "order_abc", "pay_xyz")
	assert.True(t, VerifySignature("secret", "order_abc", "pay_xyz", sig))
}

func TestVerifySignature_Tampered(t *testing.T) {
	sig := sign("secret", "order_abc", "pay_xyz")

	assert.False(t, VerifySignature("secret", "order_abc", "pay_other", sig))
	assert.False(t, VerifySignature("secret", "order_other", "pay_xyz", sig))
	assert.False(t, VerifySignature("wrong-secret", "order_abc", "pay_xyz", sig))
	assert.False(t, VerifySignature("secret", "order_abc", "pay_xyz", ""))
}

func TestRazorpayClient_CreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key-id", user)
		assert.Equal(t, "key-secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(124000), body["amount"])
		assert.Equal(t, "INR", body["currency"])

		json.NewEncoder(w).Encode(map[string]any{
			"id":       "order_abc",
			"amount":   124000,
			"currency": "INR",
		})
	}))
	defer server.Close()

	client := NewRazorpayClient(server.URL, "key-id", "key-secret")
	order, err := client.CreateOrder(context.Background(), 124000, "INR", "ORD-20250101-ABC123")

	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(124000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
}

func TestRazorpayClient_CreateOrder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewRazorpayClient(server.URL, "key-id", "key-secret")
	_, err := client.CreateOrder(context.Background(), 1000, "INR", "rcpt")

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestRazorpayClient_CreateOrder_Unreachable(t *testing.T) {
	client := NewRazorpayClient("http://127.0.0.1:1", "key-id", "key-secret")
	_, err := client.CreateOrder(context.Background(), 1000, "INR", "rcpt")

	assert.ErrorIs(t, err, ErrGatewayUnavailable)
}
