package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/ec-shop/internal/model"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("duplicate document")
	// ErrInsufficientStock is returned when a conditional stock
	// decrement matches no document.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict is returned when a conditional update matches no
	// document because its precondition no longer holds.
	ErrConflict = errors.New("conditional update matched no document")
)

// ProductStore provides access to the products collection. Stock
// mutations are atomic increments conditioned at the store, never
// read-modify-write at the caller.
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
	Insert(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	SetCachedPrice(ctx context.Context, id string, price float64) error
	// DecrementStock subtracts qty only where stock >= qty; returns
	// ErrInsufficientStock when the condition fails.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}

type OfferStore interface {
	GetByID(ctx context.Context, id string) (*model.Offer, error)
	// ListActive returns offers whose validity window contains now and
	// whose active flag is set.
	ListActive(ctx context.Context, now time.Time) ([]model.Offer, error)
	Insert(ctx context.Context, o *model.Offer) error
	Update(ctx context.Context, o *model.Offer) error
}

type CartStore interface {
	Get(ctx context.Context, userID string) (*model.Cart, error)
	Save(ctx context.Context, c *model.Cart) error
	Clear(ctx context.Context, userID string) error
	SetCoupon(ctx context.Context, userID, code string) error
}

type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetByID(ctx context.Context, id string) (*model.Coupon, error)
	ListActive(ctx context.Context, now time.Time) ([]model.Coupon, error)
	Insert(ctx context.Context, c *model.Coupon) error
	Update(ctx context.Context, c *model.Coupon) error
	Delete(ctx context.Context, id string) error
	// RegisterUse increments usageCount and records the user's usage in
	// a single conditional update: it matches only while
	// usageCount < usageLimit and the user has no existing usage
	// record. Returns ErrConflict when nothing matched.
	RegisterUse(ctx context.Context, couponID, userID string) error
	// RemoveUse deletes the user's usage record and decrements
	// usageCount. Returns ErrConflict when the user had no record.
	RemoveUse(ctx context.Context, couponID, userID string) error
}

type OrderStore interface {
	Insert(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	// TransitionStatus moves an order from one status to another in a
	// single conditional update, also writing the new payment status.
	// Returns ErrConflict when the order is no longer in `from`.
	TransitionStatus(ctx context.Context, orderID, from, to, paymentStatus string) error
	// MarkPaid flips the order carrying gatewayOrderID from a pending
	// payment to paid, attaching the gateway payment id. Returns the
	// updated order, or ErrNotFound when no pending order matches.
	MarkPaid(ctx context.Context, gatewayOrderID, paymentID string) (*model.Order, error)
	// MarkPaymentFailed records a failed gateway payment attempt.
	MarkPaymentFailed(ctx context.Context, gatewayOrderID string) error
	// SetGatewayOrder attaches a freshly created remote payment order.
	SetGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error
}

type TransactionStore interface {
	Insert(ctx context.Context, t *model.Transaction) error
	ListByUser(ctx context.Context, userID string) ([]model.Transaction, error)
	// Balance returns the running sum (credits - debits) for a user.
	Balance(ctx context.Context, userID string) (float64, error)
}

type AddressStore interface {
	GetByID(ctx context.Context, id string) (*model.Address, error)
	ListByUser(ctx context.Context, userID string) ([]model.Address, error)
	Insert(ctx context.Context, a *model.Address) error
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, u *model.User) error
}

type CategoryStore interface {
	GetByID(ctx context.Context, id string) (*model.Category, error)
	ListActive(ctx context.Context) ([]model.Category, error)
}
