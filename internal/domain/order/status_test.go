package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/ec-shop/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.OrderStatusPending, model.OrderStatusShipped, true},
		{model.OrderStatusPending, model.OrderStatusCancelled, true},
		{model.OrderStatusPending, model.OrderStatusDelivered, false},
		{model.OrderStatusShipped, model.OrderStatusDelivered, true},
		{model.OrderStatusShipped, model.OrderStatusCancelled, false},
		{model.OrderStatusDelivered, model.OrderStatusReturned, true},
		{model.OrderStatusDelivered, model.OrderStatusShipped, false},
		{model.OrderStatusCancelled, model.OrderStatusPending, false},
		{model.OrderStatusReturned, model.OrderStatusDelivered, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestAdminCanTransition(t *testing.T) {
	// Admin may jump pending straight to delivered.
	assert.True(t, AdminCanTransition(model.OrderStatusPending, model.OrderStatusDelivered))

	// But still never cancel after shipping.
	assert.False(t, AdminCanTransition(model.OrderStatusShipped, model.OrderStatusCancelled))
	assert.False(t, AdminCanTransition(model.OrderStatusDelivered, model.OrderStatusCancelled))

	// Terminal states stay terminal.
	assert.False(t, AdminCanTransition(model.OrderStatusCancelled, model.OrderStatusPending))
	assert.False(t, AdminCanTransition(model.OrderStatusReturned, model.OrderStatusPending))
}

func TestNextPaymentStatus(t *testing.T) {
	cases := []struct {
		name       string
		current    string
		newStatus  string
		method     string
		want       string
	}{
		{"cod cancel", model.PaymentStatusPending, model.OrderStatusCancelled, model.PaymentMethodCOD, model.PaymentStatusCancelled},
		{"paid online cancel refunds", model.PaymentStatusPaid, model.OrderStatusCancelled, model.PaymentMethodRazorpay, model.PaymentStatusRefunded},
		{"wallet cancel refunds", model.PaymentStatusPaid, model.OrderStatusCancelled, model.PaymentMethodWallet, model.PaymentStatusRefunded},
		{"failed payment stays failed on cancel", model.PaymentStatusFailed, model.OrderStatusCancelled, model.PaymentMethodRazorpay, model.PaymentStatusFailed},
		{"return refunds", model.PaymentStatusPaid, model.OrderStatusReturned, model.PaymentMethodRazorpay, model.PaymentStatusRefunded},
		{"cod delivery collects payment", model.PaymentStatusPending, model.OrderStatusDelivered, model.PaymentMethodCOD, model.PaymentStatusPaid},
		{"online delivery keeps status", model.PaymentStatusPaid, model.OrderStatusDelivered, model.PaymentMethodRazorpay, model.PaymentStatusPaid},
		{"shipping changes nothing", model.PaymentStatusPaid, model.OrderStatusShipped, model.PaymentMethodRazorpay, model.PaymentStatusPaid},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, NextPaymentStatus(c.current, c.newStatus, c.method))
		})
	}
}

func TestRefundDue(t *testing.T) {
	assert.False(t, RefundDue(model.PaymentStatusPending, model.PaymentMethodCOD))
	assert.True(t, RefundDue(model.PaymentStatusPaid, model.PaymentMethodWallet))
	assert.True(t, RefundDue(model.PaymentStatusPending, model.PaymentMethodRazorpay))
	assert.False(t, RefundDue(model.PaymentStatusFailed, model.PaymentMethodRazorpay))
}
