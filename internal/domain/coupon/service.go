package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrExpired        = errors.New("coupon has expired")
	ErrBelowMinimum   = errors.New("cart total is below the coupon minimum purchase")
	ErrLimitReached   = errors.New("coupon usage limit reached")
	ErrAlreadyUsed    = errors.New("coupon already used by this user")
	ErrNotApplied     = errors.New("coupon is not applied")
	ErrDuplicateCode  = errors.New("coupon code already exists")
	ErrInvalidCoupon  = errors.New("invalid coupon configuration")
)

// Discount computes the coupon discount on a cart total, using the
// same percentage/flat rule offers use. The result never exceeds the
// total.
func Discount(c *model.Coupon, total float64) float64 {
	var d float64
	switch c.Kind {
	case model.DiscountFlat:
		d = c.Value
	case model.DiscountPercentage:
		d = total * c.Value / 100
		if c.MaxDiscount > 0 && d > c.MaxDiscount {
			d = c.MaxDiscount
		}
	}
	if d > total {
		d = total
	}
	return d
}

// Service is the coupon ledger: it validates codes, tracks global and
// per-user usage, and records the applied code on the user's cart.
type Service struct {
	coupons store.CouponStore
	carts   store.CartStore
}

func NewService(coupons store.CouponStore, carts store.CartStore) *Service {
	return &Service{coupons: coupons, carts: carts}
}

// Apply validates the code against the cart total and registers the
// use. Validation and registration are one conditional store update,
// so two racing applications by the same user cannot both land.
func (s *Service) Apply(ctx context.Context, userID, code string, cartTotal float64) (float64, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrCouponNotFound
	}
	if err != nil {
		return 0, err
	}
	if !c.Active || time.Now().Before(c.ValidFrom) {
		return 0, ErrCouponNotFound
	}
	if time.Now().After(c.ValidUntil) {
		return 0, ErrExpired
	}
	if cartTotal < c.MinPurchase {
		return 0, ErrBelowMinimum
	}
	if c.UsageCount >= c.UsageLimit {
		return 0, ErrLimitReached
	}
	if c.UsedByUser(userID) {
		return 0, ErrAlreadyUsed
	}

	if err := s.coupons.RegisterUse(ctx, c.ID, userID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost a race: re-read to report which limit was hit.
			fresh, ferr := s.coupons.GetByID(ctx, c.ID)
			if ferr == nil && fresh.UsedByUser(userID) {
				return 0, ErrAlreadyUsed
			}
			return 0, ErrLimitReached
		}
		return 0, err
	}

	if err := s.carts.SetCoupon(ctx, userID, code); err != nil && !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	return Discount(c, cartTotal), nil
}

// Remove deletes the user's usage record, decrements the global count
// and detaches the code from the cart.
func (s *Service) Remove(ctx context.Context, userID, code string) error {
	c, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCouponNotFound
	}
	if err != nil {
		return err
	}

	if err := s.coupons.RemoveUse(ctx, c.ID, userID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrNotApplied
		}
		return err
	}

	if err := s.carts.SetCoupon(ctx, userID, ""); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// ListApplicable returns the currently valid coupons the user can still
// apply, with usage tracking cleared out of the response.
func (s *Service) ListApplicable(ctx context.Context, userID string) ([]model.Coupon, error) {
	active, err := s.coupons.ListActive(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	applicable := make([]model.Coupon, 0, len(active))
	for _, c := range active {
		if c.UsageCount >= c.UsageLimit || c.UsedByUser(userID) {
			continue
		}
		c.UsedBy = nil
		c.UsageCount = 0
		applicable = append(applicable, c)
	}
	return applicable, nil
}

// CouponForCheckout revalidates an applied code at checkout time and
// returns the discount on the live total. An exhausted window or a
// raised minimum makes the discount zero rather than blocking the
// order.
func (s *Service) CouponForCheckout(ctx context.Context, userID, code string, liveTotal float64) float64 {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil || !c.Active {
		return 0
	}
	if time.Now().After(c.ValidUntil) || liveTotal < c.MinPurchase {
		return 0
	}
	if !c.UsedByUser(userID) {
		return 0
	}
	return Discount(c, liveTotal)
}

// Create validates and stores a new coupon (admin).
func (s *Service) Create(ctx context.Context, c *model.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	err := s.coupons.Insert(ctx, c)
	if errors.Is(err, store.ErrDuplicate) {
		return ErrDuplicateCode
	}
	return err
}

// Update validates and replaces an existing coupon (admin).
func (s *Service) Update(ctx context.Context, c *model.Coupon) error {
	if err := validateCoupon(c); err != nil {
		return err
	}
	err := s.coupons.Update(ctx, c)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCouponNotFound
	}
	return err
}

// Delete removes a coupon (admin).
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.coupons.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCouponNotFound
	}
	return err
}

func validateCoupon(c *model.Coupon) error {
	if c.Code == "" || c.UsageLimit < 1 {
		return ErrInvalidCoupon
	}
	switch c.Kind {
	case model.DiscountPercentage:
		if c.Value <= 0 || c.Value > 100 {
			return ErrInvalidCoupon
		}
	case model.DiscountFlat:
		if c.Value <= 0 {
			return ErrInvalidCoupon
		}
	default:
		return ErrInvalidCoupon
	}
	if !c.ValidFrom.Before(c.ValidUntil) {
		return ErrInvalidCoupon
	}
	return nil
}
