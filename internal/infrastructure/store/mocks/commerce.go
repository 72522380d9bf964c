package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

// CartStore is an in-memory store.CartStore keyed by user id.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]model.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]model.Cart)}
}

func (s *CartStore) Seed(c model.Cart) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[c.UserID] = c
}

func (s *CartStore) Get(_ context.Context, userID string) (*model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	return &cp, nil
}

func (s *CartStore) Save(_ context.Context, c *model.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	s.carts[c.UserID] = cp
	return nil
}

func (s *CartStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func (s *CartStore) SetCoupon(_ context.Context, userID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return store.ErrNotFound
	}
	c.CouponCode = code
	s.carts[userID] = c
	return nil
}

// CouponStore is an in-memory store.CouponStore. RegisterUse applies
// the same single conditional check-and-mutate as the Mongo
// implementation, under one lock, so concurrent double-apply is
// testable.
type CouponStore struct {
	mu      sync.Mutex
	coupons map[string]model.Coupon
}

func NewCouponStore() *CouponStore {
	return &CouponStore{coupons: make(map[string]model.Coupon)}
}

func (s *CouponStore) Seed(c model.Coupon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coupons[c.ID] = c
}

func (s *CouponStore) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.coupons {
		if c.Code == code {
			cp := c
			cp.UsedBy = append([]model.CouponUsage(nil), c.UsedBy...)
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *CouponStore) GetByID(_ context.Context, id string) (*model.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := c
	cp.UsedBy = append([]model.CouponUsage(nil), c.UsedBy...)
	return &cp, nil
}

func (s *CouponStore) ListActive(_ context.Context, now time.Time) ([]model.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Coupon
	for _, c := range s.coupons {
		if c.Active && !now.Before(c.ValidFrom) && now.Before(c.ValidUntil) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *CouponStore) Insert(_ context.Context, c *model.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coupons[c.ID]; ok {
		return store.ErrDuplicate
	}
	for _, existing := range s.coupons {
		if existing.Code == c.Code {
			return store.ErrDuplicate
		}
	}
	s.coupons[c.ID] = *c
	return nil
}

func (s *CouponStore) Update(_ context.Context, c *model.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coupons[c.ID]; !ok {
		return store.ErrNotFound
	}
	s.coupons[c.ID] = *c
	return nil
}

func (s *CouponStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coupons[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.coupons, id)
	return nil
}

func (s *CouponStore) RegisterUse(_ context.Context, couponID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[couponID]
	if !ok {
		return store.ErrConflict
	}
	if c.UsageCount >= c.UsageLimit {
		return store.ErrConflict
	}
	for _, u := range c.UsedBy {
		if u.UserID == userID {
			return store.ErrConflict
		}
	}
	c.UsageCount++
	c.UsedBy = append(c.UsedBy, model.CouponUsage{UserID: userID, Count: 1})
	s.coupons[couponID] = c
	return nil
}

func (s *CouponStore) RemoveUse(_ context.Context, couponID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[couponID]
	if !ok {
		return store.ErrConflict
	}
	for i, u := range c.UsedBy {
		if u.UserID == userID {
			c.UsedBy = append(c.UsedBy[:i], c.UsedBy[i+1:]...)
			c.UsageCount--
			s.coupons[couponID] = c
			return nil
		}
	}
	return store.ErrConflict
}

// OrderStore is an in-memory store.OrderStore with conditional status
// transitions.
type OrderStore struct {
	mu     sync.Mutex
	orders map[string]model.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]model.Order)}
}

func (s *OrderStore) Seed(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

func (s *OrderStore) Insert(_ context.Context, o *model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; ok {
		return store.ErrDuplicate
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	s.orders[o.ID] = cp
	return nil
}

func (s *OrderStore) GetByID(_ context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (s *OrderStore) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.GatewayOrderID == gatewayOrderID {
			cp := o
			cp.Items = append([]model.OrderItem(nil), o.Items...)
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *OrderStore) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *OrderStore) ListAll(_ context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *OrderStore) TransitionStatus(_ context.Context, orderID, from, to, paymentStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok || o.Status != from {
		return store.ErrConflict
	}
	o.Status = to
	o.PaymentStatus = paymentStatus
	o.UpdatedAt = time.Now()
	s.orders[orderID] = o
	return nil
}

func (s *OrderStore) MarkPaid(_ context.Context, gatewayOrderID, paymentID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.orders {
		if o.GatewayOrderID == gatewayOrderID &&
			(o.PaymentStatus == model.PaymentStatusPending || o.PaymentStatus == model.PaymentStatusFailed) {
			o.PaymentStatus = model.PaymentStatusPaid
			o.GatewayPaymentID = paymentID
			o.UpdatedAt = time.Now()
			s.orders[id] = o
			cp := o
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *OrderStore) MarkPaymentFailed(_ context.Context, gatewayOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, o := range s.orders {
		if o.GatewayOrderID == gatewayOrderID && o.PaymentStatus == model.PaymentStatusPending {
			o.PaymentStatus = model.PaymentStatusFailed
			o.UpdatedAt = time.Now()
			s.orders[id] = o
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *OrderStore) SetGatewayOrder(_ context.Context, orderID, gatewayOrderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return store.ErrNotFound
	}
	o.GatewayOrderID = gatewayOrderID
	s.orders[orderID] = o
	return nil
}
