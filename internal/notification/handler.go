package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/ec-shop/internal/email"
	"github.com/example/ec-shop/internal/events"
	"github.com/example/ec-shop/internal/infrastructure/store"
)

// Sender is the slice of the email service the notifier uses.
type Sender interface {
	SendOrderConfirmation(to, reference string, total float64, items []email.OrderItem) error
	SendRefundNotice(to, reference string, amount float64, reason string) error
}

// Handler turns order lifecycle events into customer emails.
type Handler struct {
	sender Sender
	users  store.UserStore
}

func NewHandler(sender Sender, users store.UserStore) *Handler {
	return &Handler{sender: sender, users: users}
}

// HandleEvent processes one event from the Kafka topic. Lookup
// failures are logged and swallowed so a bad record cannot wedge the
// consumer; only send failures propagate for redelivery.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		log.Printf("[Notifier] Failed to unmarshal event: %v", err)
		return nil
	}

	switch env.Type {
	case events.TypeOrderPlaced:
		return h.handleOrderPlaced(ctx, env)
	case events.TypeOrderCancelled:
		return h.handleRefund(ctx, env, "cancelled")
	case events.TypeOrderReturned:
		return h.handleRefund(ctx, env, "returned")
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, env events.Envelope) error {
	var e events.OrderPlaced
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal order.placed payload: %v", err)
		return nil
	}

	u, err := h.users.GetByID(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] User %s not found for order %s: %v", e.UserID, e.Reference, err)
		return nil
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	if err := h.sender.SendOrderConfirmation(u.Email, e.Reference, e.TotalAmount, items); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", u.Email, err)
		return err
	}

	log.Printf("[Notifier] Order confirmation sent to %s for %s", u.Email, e.Reference)
	return nil
}

func (h *Handler) handleRefund(ctx context.Context, env events.Envelope, reason string) error {
	var e events.OrderCancelled
	if err := json.Unmarshal(env.Data, &e); err != nil {
		log.Printf("[Notifier] Failed to unmarshal %s payload: %v", env.Type, err)
		return nil
	}
	if e.RefundedAmount <= 0 {
		return nil
	}

	u, err := h.users.GetByID(ctx, e.UserID)
	if err != nil {
		log.Printf("[Notifier] User %s not found for order %s: %v", e.UserID, e.Reference, err)
		return nil
	}

	if err := h.sender.SendRefundNotice(u.Email, e.Reference, e.RefundedAmount, reason); err != nil {
		log.Printf("[Notifier] Failed to send refund notice to %s: %v", u.Email, err)
		return err
	}

	log.Printf("[Notifier] Refund notice sent to %s for %s", u.Email, e.Reference)
	return nil
}
