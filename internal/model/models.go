package model

import "time"

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodWallet   = "wallet"
	PaymentMethodRazorpay = "razorpay"
)

// Checkout constants.
const (
	ShippingFee     = 40.0
	CODCeiling      = 1000.0
	MaxItemQuantity = 10
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
	OrderStatusReturned  = "returned"
)

// Payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusCancelled = "cancelled"
)

// Discount kinds shared by offers and coupons.
const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// Offer scopes.
const (
	OfferScopeProduct  = "product"
	OfferScopeCategory = "category"
)

type Product struct {
	ID              string    `json:"id" bson:"_id"`
	Name            string    `json:"name" bson:"name"`
	Description     string    `json:"description" bson:"description"`
	Price           float64   `json:"price" bson:"price"`
	DiscountedPrice float64   `json:"discounted_price" bson:"discountedPrice"`
	Stock           int       `json:"stock" bson:"stock"`
	CategoryID      string    `json:"category_id" bson:"categoryId"`
	SubcategoryID   string    `json:"subcategory_id" bson:"subcategoryId"`
	Images          []string  `json:"images" bson:"images"`
	Active          bool      `json:"active" bson:"active"`
	CreatedAt       time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updatedAt"`
}

type Offer struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Scope       string    `json:"scope" bson:"scope"` // product | category
	TargetIDs   []string  `json:"target_ids" bson:"targetIds"`
	Kind        string    `json:"kind" bson:"kind"` // percentage | flat
	Value       float64   `json:"value" bson:"value"`
	MaxDiscount float64   `json:"max_discount" bson:"maxDiscount"` // 0 = uncapped
	ValidFrom   time.Time `json:"valid_from" bson:"validFrom"`
	ValidUntil  time.Time `json:"valid_until" bson:"validUntil"`
	Active      bool      `json:"active" bson:"active"`
}

// CartItem is one line of a user's cart. BasePrice is the product price
// when the line was added; CartPrice is the discounted price shown to
// the user at that moment.
type CartItem struct {
	ProductID string  `json:"product_id" bson:"productId"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	BasePrice float64 `json:"base_price" bson:"basePrice"`
	CartPrice float64 `json:"cart_price" bson:"cartPrice"`
}

// Cart holds one document per user.
type Cart struct {
	UserID     string     `json:"user_id" bson:"_id"`
	Items      []CartItem `json:"items" bson:"items"`
	CouponCode string     `json:"coupon_code,omitempty" bson:"couponCode,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updatedAt"`
}

type CouponUsage struct {
	UserID string `json:"user_id" bson:"userId"`
	Count  int    `json:"count" bson:"count"`
}

type Coupon struct {
	ID          string        `json:"id" bson:"_id"`
	Code        string        `json:"code" bson:"code"`
	Kind        string        `json:"kind" bson:"kind"`
	Value       float64       `json:"value" bson:"value"`
	MaxDiscount float64       `json:"max_discount" bson:"maxDiscount"`
	MinPurchase float64       `json:"min_purchase" bson:"minPurchase"`
	ValidFrom   time.Time     `json:"valid_from" bson:"validFrom"`
	ValidUntil  time.Time     `json:"valid_until" bson:"validUntil"`
	UsageLimit  int           `json:"usage_limit" bson:"usageLimit"`
	UsageCount  int           `json:"usage_count" bson:"usageCount"`
	UsedBy      []CouponUsage `json:"-" bson:"usedBy"`
	Active      bool          `json:"active" bson:"active"`
}

// UsedByUser reports whether the user already has a usage record.
func (c *Coupon) UsedByUser(userID string) bool {
	for _, u := range c.UsedBy {
		if u.UserID == userID && u.Count >= 1 {
			return true
		}
	}
	return false
}

type Address struct {
	ID      string `json:"id" bson:"_id"`
	UserID  string `json:"user_id" bson:"userId"`
	Name    string `json:"name" bson:"name"`
	Line1   string `json:"line1" bson:"line1"`
	Line2   string `json:"line2,omitempty" bson:"line2,omitempty"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Pincode string `json:"pincode" bson:"pincode"`
	Phone   string `json:"phone" bson:"phone"`
}

// OrderItem stores its own price: price-at-purchase is immutable once
// the order exists, regardless of later product edits.
type OrderItem struct {
	ProductID string  `json:"product_id" bson:"productId"`
	Name      string  `json:"name" bson:"name"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
}

type Order struct {
	ID               string      `json:"id" bson:"_id"`
	Reference        string      `json:"reference" bson:"reference"`
	UserID           string      `json:"user_id" bson:"userId"`
	Items            []OrderItem `json:"items" bson:"items"`
	Address          Address     `json:"address" bson:"address"` // snapshot, not a reference
	PaymentMethod    string      `json:"payment_method" bson:"paymentMethod"`
	PaymentStatus    string      `json:"payment_status" bson:"paymentStatus"`
	Status           string      `json:"status" bson:"status"`
	ItemTotal        float64     `json:"item_total" bson:"itemTotal"`
	Discount         float64     `json:"discount" bson:"discount"`
	ShippingFee      float64     `json:"shipping_fee" bson:"shippingFee"`
	TotalAmount      float64     `json:"total_amount" bson:"totalAmount"`
	GatewayOrderID   string      `json:"gateway_order_id,omitempty" bson:"gatewayOrderId,omitempty"`
	GatewayPaymentID string      `json:"gateway_payment_id,omitempty" bson:"gatewayPaymentId,omitempty"`
	CreatedAt        time.Time   `json:"created_at" bson:"createdAt"`
	UpdatedAt        time.Time   `json:"updated_at" bson:"updatedAt"`
}

// Transaction types for the wallet ledger.
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// Transaction is an append-only wallet ledger entry. The wallet balance
// is never stored; it is the running sum of a user's transactions.
type Transaction struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"userId"`
	Type        string    `json:"type" bson:"type"`
	Amount      float64   `json:"amount" bson:"amount"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at" bson:"createdAt"`
}

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	Name         string    `json:"name" bson:"name"`
	Role         string    `json:"role" bson:"role"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
}

type Category struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	ParentID string `json:"parent_id,omitempty" bson:"parentId,omitempty"`
	Active   bool   `json:"active" bson:"active"`
}
