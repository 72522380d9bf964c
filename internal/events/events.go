package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-shop/internal/model"
)

// Order lifecycle event types published to the events topic.
const (
	TypeOrderPlaced      = "order.placed"
	TypeOrderCancelled   = "order.cancelled"
	TypeOrderReturned    = "order.returned"
	TypeOrderRefunded    = "order.refunded"
	TypePaymentConfirmed = "payment.confirmed"
)

// Envelope wraps every published event.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type OrderPlaced struct {
	OrderID       string            `json:"order_id"`
	Reference     string            `json:"reference"`
	UserID        string            `json:"user_id"`
	Items         []model.OrderItem `json:"items"`
	TotalAmount   float64           `json:"total_amount"`
	PaymentMethod string            `json:"payment_method"`
}

type OrderCancelled struct {
	OrderID        string  `json:"order_id"`
	Reference      string  `json:"reference"`
	UserID         string  `json:"user_id"`
	RefundedAmount float64 `json:"refunded_amount"`
}

type OrderReturned struct {
	OrderID        string  `json:"order_id"`
	Reference      string  `json:"reference"`
	UserID         string  `json:"user_id"`
	RefundedAmount float64 `json:"refunded_amount"`
}

type PaymentConfirmed struct {
	OrderID          string  `json:"order_id"`
	Reference        string  `json:"reference"`
	UserID           string  `json:"user_id"`
	GatewayPaymentID string  `json:"gateway_payment_id"`
	Amount           float64 `json:"amount"`
}

// Publisher emits domain events. Implementations must not block the
// request beyond their own transport timeout.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// Producer is the transport the Kafka-backed publisher writes through.
type Producer interface {
	Publish(ctx context.Context, key string, event any) error
}

// KafkaPublisher wraps payloads into envelopes and writes them to the
// events topic, keyed so one order's events stay ordered.
type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, key, Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now(),
		Data:       data,
	})
}

// Nop discards events; used in tests and when Kafka is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, string, string, any) error { return nil }
