package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-shop/internal/email"
	"github.com/example/ec-shop/internal/events"
	"github.com/example/ec-shop/internal/infrastructure/store/mocks"
	"github.com/example/ec-shop/internal/model"
)

type fakeSender struct {
	confirmations []string
	refunds       []float64
}

func (s *fakeSender) SendOrderConfirmation(to, reference string, total float64, items []email.OrderItem) error {
	s.confirmations = append(s.confirmations, to)
	return nil
}

func (s *fakeSender) SendRefundNotice(to, reference string, amount float64, reason string) error {
	s.refunds = append(s.refunds, amount)
	return nil
}

func envelope(t *testing.T, eventType string, payload any) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(events.Envelope{
		ID:         "evt-1",
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	})
	require.NoError(t, err)
	return raw
}

func TestHandleOrderPlaced(t *testing.T) {
	users := mocks.NewUserStore()
	users.Seed(model.User{ID: "u1", Email: "shopper@example.com", Active: true})
	sender := &fakeSender{}
	h := NewHandler(sender, users)

	raw := envelope(t, events.TypeOrderPlaced, events.OrderPlaced{
		OrderID:     "o1",
		Reference:   "ORD-20260831-AB12CD",
		UserID:      "u1",
		Items:       []model.OrderItem{{ProductID: "p1", Name: "Keyboard", Quantity: 1, Price: 500}},
		TotalAmount: 540,
	})

	require.NoError(t, h.HandleEvent(context.Background(), nil, raw))
	assert.Equal(t, []string{"shopper@example.com"}, sender.confirmations)
}

func TestHandleRefundEvents(t *testing.T) {
	users := mocks.NewUserStore()
	users.Seed(model.User{ID: "u1", Email: "shopper@example.com", Active: true})
	sender := &fakeSender{}
	h := NewHandler(sender, users)

	raw := envelope(t, events.TypeOrderCancelled, events.OrderCancelled{
		OrderID:        "o1",
		Reference:      "ORD-20260831-AB12CD",
		UserID:         "u1",
		RefundedAmount: 540,
	})
	require.NoError(t, h.HandleEvent(context.Background(), nil, raw))

	// A COD cancellation carries no refund and sends nothing.
	raw = envelope(t, events.TypeOrderCancelled, events.OrderCancelled{
		OrderID:   "o2",
		Reference: "ORD-20260831-EF34GH",
		UserID:    "u1",
	})
	require.NoError(t, h.HandleEvent(context.Background(), nil, raw))

	assert.Equal(t, []float64{540}, sender.refunds)
}

func TestHandleEventUnknownUserSwallowed(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, mocks.NewUserStore())

	raw := envelope(t, events.TypeOrderPlaced, events.OrderPlaced{OrderID: "o1", UserID: "ghost"})
	assert.NoError(t, h.HandleEvent(context.Background(), nil, raw))
	assert.Empty(t, sender.confirmations)
}

func TestHandleEventBadJSON(t *testing.T) {
	h := NewHandler(&fakeSender{}, mocks.NewUserStore())
	assert.NoError(t, h.HandleEvent(context.Background(), nil, []byte("not json")))
}
