package order

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/coupon"
	"github.com/example/ec-shop/internal/domain/wallet"
	"github.com/example/ec-shop/internal/events"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
	"github.com/example/ec-shop/internal/payment"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrForbidden               = errors.New("order does not belong to caller")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrAddressNotFound         = errors.New("delivery address not found")
	ErrOutOfStock              = errors.New("product is out of stock")
	ErrInvalidPaymentMethod    = errors.New("unknown payment method")
	ErrPaymentMethodNotAllowed = fmt.Errorf("cash on delivery is not available for orders above %.0f", model.CODCeiling)
	ErrAlreadyProcessed        = errors.New("order is already processed")
	ErrNotDelivered            = errors.New("order has not been delivered")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrSignatureMismatch       = errors.New("payment signature mismatch")
	ErrPaymentNotPending       = errors.New("order payment is not pending")
)

const currency = "INR"

// Service is the checkout orchestrator: it composes live pricing, the
// coupon ledger, conditional stock mutation, payment method rules and
// the order status machine into single operations.
type Service struct {
	orders    store.OrderStore
	products  store.ProductStore
	addresses store.AddressStore
	carts     *cart.Service
	coupons   *coupon.Service
	wallet    *wallet.Service
	gateway   payment.Gateway
	publisher events.Publisher
}

func NewService(
	orders store.OrderStore,
	products store.ProductStore,
	addresses store.AddressStore,
	carts *cart.Service,
	coupons *coupon.Service,
	walletSvc *wallet.Service,
	gateway payment.Gateway,
	publisher events.Publisher,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		addresses: addresses,
		carts:     carts,
		coupons:   coupons,
		wallet:    walletSvc,
		gateway:   gateway,
		publisher: publisher,
	}
}

// Place creates an order from the user's cart. Stock is taken with
// per-product conditional decrements; any failure after that point
// compensates the decrements already applied, so no stock is lost to a
// failed checkout.
func (s *Service) Place(ctx context.Context, userID, addressID, method string) (*model.Order, error) {
	switch method {
	case model.PaymentMethodCOD, model.PaymentMethodWallet, model.PaymentMethodRazorpay:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	lines, err := s.carts.PricedLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := cart.CalculateTotals(lines)

	userCart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	var discount float64
	if userCart.CouponCode != "" {
		discount = s.coupons.CouponForCheckout(ctx, userID, userCart.CouponCode, totals.Total)
	}

	totalAmount := totals.Total - discount + model.ShippingFee

	if method == model.PaymentMethodCOD && totalAmount > model.CODCeiling {
		return nil, ErrPaymentMethodNotAllowed
	}

	addr, err := s.addresses.GetByID(ctx, addressID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	if addr.UserID != userID {
		return nil, ErrAddressNotFound
	}

	// Re-verify and take stock. Decrements are conditional per product,
	// so a racing checkout over the same last units cannot double-take.
	taken := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		if err := s.products.DecrementStock(ctx, l.Product.ID, l.Quantity); err != nil {
			s.restoreStock(ctx, taken)
			if errors.Is(err, store.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: %s", ErrOutOfStock, l.Product.Name)
			}
			return nil, err
		}
		taken = append(taken, model.OrderItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}

	now := time.Now()
	o := &model.Order{
		ID:            uuid.New().String(),
		Reference:     newReference(now),
		UserID:        userID,
		Items:         taken,
		Address:       *addr,
		PaymentMethod: method,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusPending,
		ItemTotal:     totals.Total,
		Discount:      discount,
		ShippingFee:   model.ShippingFee,
		TotalAmount:   totalAmount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch method {
	case model.PaymentMethodWallet:
		if err := s.wallet.Debit(ctx, userID, totalAmount, "Payment for order "+o.Reference); err != nil {
			s.restoreStock(ctx, taken)
			return nil, err
		}
		o.PaymentStatus = model.PaymentStatusPaid
	case model.PaymentMethodRazorpay:
		gw, err := s.gateway.CreateOrder(ctx, toMinorUnits(totalAmount), currency, o.Reference)
		if err != nil {
			s.restoreStock(ctx, taken)
			return nil, err
		}
		o.GatewayOrderID = gw.ID
	}

	if err := s.orders.Insert(ctx, o); err != nil {
		s.restoreStock(ctx, taken)
		if method == model.PaymentMethodWallet {
			if cerr := s.wallet.Credit(ctx, userID, totalAmount, "Reversal for order "+o.Reference); cerr != nil {
				log.Printf("[Order] Failed to reverse wallet debit for %s: %v", o.Reference, cerr)
			}
		}
		return nil, err
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		log.Printf("[Order] Failed to clear cart for user %s: %v", userID, err)
	}

	s.publish(ctx, events.TypeOrderPlaced, o.ID, events.OrderPlaced{
		OrderID:       o.ID,
		Reference:     o.Reference,
		UserID:        o.UserID,
		Items:         o.Items,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
	})

	return o, nil
}

// Cancel aborts a pending order: the status flip is a conditional
// update so a double cancel restores stock exactly once.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrOrderNotFound
	}
	if o.Status != model.OrderStatusPending {
		return ErrAlreadyProcessed
	}

	next := NextPaymentStatus(o.PaymentStatus, model.OrderStatusCancelled, o.PaymentMethod)
	err = s.orders.TransitionStatus(ctx, orderID, model.OrderStatusPending, model.OrderStatusCancelled, next)
	if errors.Is(err, store.ErrConflict) {
		return ErrAlreadyProcessed
	}
	if err != nil {
		return err
	}

	s.restoreStock(ctx, o.Items)

	var refunded float64
	if RefundDue(o.PaymentStatus, o.PaymentMethod) {
		refunded = o.TotalAmount
		if err := s.wallet.Credit(ctx, userID, o.TotalAmount, "Refund for cancelled order "+o.Reference); err != nil {
			log.Printf("[Order] Failed to credit refund for %s: %v", o.Reference, err)
		}
	}

	s.publish(ctx, events.TypeOrderCancelled, o.ID, events.OrderCancelled{
		OrderID:        o.ID,
		Reference:      o.Reference,
		UserID:         o.UserID,
		RefundedAmount: refunded,
	})
	return nil
}

// Return accepts a delivered order back: stock is restored and a
// refund credited unless the payment was already refunded.
func (s *Service) Return(ctx context.Context, userID, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrOrderNotFound
	}
	if o.Status != model.OrderStatusDelivered {
		return ErrNotDelivered
	}

	next := NextPaymentStatus(o.PaymentStatus, model.OrderStatusReturned, o.PaymentMethod)
	err = s.orders.TransitionStatus(ctx, orderID, model.OrderStatusDelivered, model.OrderStatusReturned, next)
	if errors.Is(err, store.ErrConflict) {
		return ErrAlreadyProcessed
	}
	if err != nil {
		return err
	}

	s.restoreStock(ctx, o.Items)

	var refunded float64
	if o.PaymentStatus != model.PaymentStatusRefunded {
		refunded = o.TotalAmount
		if err := s.wallet.Credit(ctx, userID, o.TotalAmount, "Refund for returned order "+o.Reference); err != nil {
			log.Printf("[Order] Failed to credit refund for %s: %v", o.Reference, err)
		}
	}

	s.publish(ctx, events.TypeOrderReturned, o.ID, events.OrderReturned{
		OrderID:        o.ID,
		Reference:      o.Reference,
		UserID:         o.UserID,
		RefundedAmount: refunded,
	})
	return nil
}

// UpdateStatus is the admin transition: any move the admin table
// allows, with payment status resolved through the same lookup.
func (s *Service) UpdateStatus(ctx context.Context, orderID, newStatus string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if !AdminCanTransition(o.Status, newStatus) {
		return ErrInvalidTransition
	}

	next := NextPaymentStatus(o.PaymentStatus, newStatus, o.PaymentMethod)
	err = s.orders.TransitionStatus(ctx, orderID, o.Status, newStatus, next)
	if errors.Is(err, store.ErrConflict) {
		return ErrAlreadyProcessed
	}
	if err != nil {
		return err
	}

	if newStatus == model.OrderStatusCancelled {
		s.restoreStock(ctx, o.Items)
		var refunded float64
		if next == model.PaymentStatusRefunded {
			refunded = o.TotalAmount
			if err := s.wallet.Credit(ctx, o.UserID, o.TotalAmount, "Refund for cancelled order "+o.Reference); err != nil {
				log.Printf("[Order] Failed to credit refund for %s: %v", o.Reference, err)
			}
		}
		s.publish(ctx, events.TypeOrderCancelled, o.ID, events.OrderCancelled{
			OrderID:        o.ID,
			Reference:      o.Reference,
			UserID:         o.UserID,
			RefundedAmount: refunded,
		})
	}
	return nil
}

// Get returns an order if the caller owns it or is an admin.
func (s *Service) Get(ctx context.Context, userID, orderID string, isAdmin bool) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *Service) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.orders.ListAll(ctx)
}

// CreateGatewayOrder returns the remote payment order for a pending
// gateway payment, creating one when the order does not carry it yet
// (the retry-after-failure path).
func (s *Service) CreateGatewayOrder(ctx context.Context, userID, orderID string) (*payment.GatewayOrder, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if o.PaymentMethod != model.PaymentMethodRazorpay {
		return nil, ErrInvalidPaymentMethod
	}
	if o.PaymentStatus != model.PaymentStatusPending && o.PaymentStatus != model.PaymentStatusFailed {
		return nil, ErrPaymentNotPending
	}

	if o.GatewayOrderID != "" {
		return &payment.GatewayOrder{
			ID:       o.GatewayOrderID,
			Amount:   toMinorUnits(o.TotalAmount),
			Currency: currency,
		}, nil
	}

	gw, err := s.gateway.CreateOrder(ctx, toMinorUnits(o.TotalAmount), currency, o.Reference)
	if err != nil {
		return nil, err
	}
	if err := s.orders.SetGatewayOrder(ctx, orderID, gw.ID); err != nil {
		return nil, err
	}
	return gw, nil
}

// VerifyPayment checks the gateway callback signature and, only on a
// match, flips the pending order to paid. A mismatch never mutates
// state.
func (s *Service) VerifyPayment(ctx context.Context, userID, gatewayOrderID, paymentID, signature string) (*model.Order, error) {
	o, err := s.orders.GetByGatewayOrderID(ctx, gatewayOrderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}

	if !s.gateway.VerifySignature(gatewayOrderID, paymentID, signature) {
		return nil, ErrSignatureMismatch
	}

	paid, err := s.orders.MarkPaid(ctx, gatewayOrderID, paymentID)
	if errors.Is(err, store.ErrNotFound) {
		// A concurrent verification already landed; report the order
		// as it stands.
		if o.PaymentStatus == model.PaymentStatusPaid {
			return o, nil
		}
		return nil, ErrPaymentNotPending
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypePaymentConfirmed, paid.ID, events.PaymentConfirmed{
		OrderID:          paid.ID,
		Reference:        paid.Reference,
		UserID:           paid.UserID,
		GatewayPaymentID: paymentID,
		Amount:           paid.TotalAmount,
	})
	return paid, nil
}

// MarkPaymentFailed records a client-reported gateway failure so the
// order can be retried or cancelled later.
func (s *Service) MarkPaymentFailed(ctx context.Context, userID, gatewayOrderID string) error {
	o, err := s.orders.GetByGatewayOrderID(ctx, gatewayOrderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if o.UserID != userID {
		return ErrOrderNotFound
	}
	err = s.orders.MarkPaymentFailed(ctx, gatewayOrderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrPaymentNotPending
	}
	return err
}

func (s *Service) restoreStock(ctx context.Context, items []model.OrderItem) {
	for _, item := range items {
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("[Order] Failed to restore stock for product %s: %v", item.ProductID, err)
		}
	}
}

func (s *Service) publish(ctx context.Context, eventType, key string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, key, payload); err != nil {
		log.Printf("[Order] Failed to publish %s event: %v", eventType, err)
	}
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// newReference builds the human-readable order reference: the order
// date plus a random suffix.
func newReference(now time.Time) string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a uuid fragment; references only need uniqueness.
		return "ORD-" + now.Format("20060102") + "-" + strings.ToUpper(uuid.New().String()[:6])
	}
	return "ORD-" + now.Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b))
}
