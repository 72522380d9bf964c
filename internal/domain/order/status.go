package order

import "github.com/example/ec-shop/internal/model"

// validTransitions is the customer-facing status machine. Cancelled
// and Returned are terminal; Delivered only moves to Returned.
var validTransitions = map[string][]string{
	model.OrderStatusPending:   {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:   {model.OrderStatusDelivered},
	model.OrderStatusDelivered: {model.OrderStatusReturned},
	model.OrderStatusCancelled: {},
	model.OrderStatusReturned:  {},
}

// adminTransitions additionally lets an admin jump an order straight to
// Delivered, but still never to Cancelled once it has shipped.
var adminTransitions = map[string][]string{
	model.OrderStatusPending:   {model.OrderStatusShipped, model.OrderStatusDelivered, model.OrderStatusCancelled},
	model.OrderStatusShipped:   {model.OrderStatusDelivered},
	model.OrderStatusDelivered: {model.OrderStatusReturned},
	model.OrderStatusCancelled: {},
	model.OrderStatusReturned:  {},
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanTransition reports whether the customer-facing machine allows the
// move.
func CanTransition(from, to string) bool {
	return canTransition(validTransitions, from, to)
}

// AdminCanTransition reports whether an admin may force the move.
func AdminCanTransition(from, to string) bool {
	return canTransition(adminTransitions, from, to)
}

// NextPaymentStatus is the total payment-status function evaluated once
// before an order status commit. It replaces deriving payment status as
// a save-time side effect: the whole matrix lives here.
func NextPaymentStatus(current, newStatus, method string) string {
	switch newStatus {
	case model.OrderStatusCancelled:
		if method == model.PaymentMethodCOD {
			return model.PaymentStatusCancelled
		}
		if current == model.PaymentStatusFailed {
			return model.PaymentStatusFailed
		}
		return model.PaymentStatusRefunded
	case model.OrderStatusReturned:
		return model.PaymentStatusRefunded
	case model.OrderStatusDelivered:
		// COD is collected on delivery.
		if method == model.PaymentMethodCOD && current == model.PaymentStatusPending {
			return model.PaymentStatusPaid
		}
		return current
	default:
		return current
	}
}

// RefundDue reports whether cancelling an order owes the customer a
// wallet credit: online payments that have not already failed.
func RefundDue(paymentStatus, method string) bool {
	return method != model.PaymentMethodCOD && paymentStatus != model.PaymentStatusFailed
}
