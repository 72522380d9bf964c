package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrGatewayUnavailable marks gateway failures the client may retry.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// GatewayOrder is the remote payment intent created before an online
// payment is collected.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
}

// Gateway is the external payment collaborator. Signature verification
// is a local HMAC computation and never leaves the process.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

const requestTimeout = 10 * time.Second

// RazorpayClient talks to a Razorpay-compatible orders API.
type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

// CreateOrder creates a remote payment order for the given amount in
// minor units. Any transport or non-2xx failure surfaces as
// ErrGatewayUnavailable so callers can invite a retry.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	payload, err := json.Marshal(map[string]any{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrGatewayUnavailable, err)
	}
	return &order, nil
}

// VerifySignature recomputes the callback HMAC and compares it in
// constant time.
func (c *RazorpayClient) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return VerifySignature(c.keySecret, gatewayOrderID, paymentID, signature)
}

// VerifySignature checks an HMAC-SHA256 signature over
// "gatewayOrderID|paymentID".
func VerifySignature(secret, gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
