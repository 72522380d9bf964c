package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/ec-shop/internal/auth"
	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/coupon"
	"github.com/example/ec-shop/internal/domain/order"
	"github.com/example/ec-shop/internal/domain/pricing"
	"github.com/example/ec-shop/internal/domain/product"
	"github.com/example/ec-shop/internal/domain/wallet"
	"github.com/example/ec-shop/internal/events"
	"github.com/example/ec-shop/internal/infrastructure/store/mocks"
	"github.com/example/ec-shop/internal/model"
	"github.com/example/ec-shop/internal/payment"
)

type testServer struct {
	router    http.Handler
	jwt       *auth.JWTService
	products  *mocks.ProductStore
	orders    *mocks.OrderStore
	carts     *mocks.CartStore
	couponDB  *mocks.CouponStore
	addresses *mocks.AddressStore
	users     *mocks.UserStore
}

type stubGateway struct{}

func (stubGateway) CreateOrder(_ context.Context, amountMinor int64, currency, _ string) (*payment.GatewayOrder, error) {
	return &payment.GatewayOrder{ID: "rzp_test", Amount: amountMinor, Currency: currency}, nil
}

func (stubGateway) VerifySignature(_, _, _ string) bool { return false }

func newTestServer() *testServer {
	ts := &testServer{
		jwt:       auth.NewJWTService("test-secret", 15*time.Minute, 24*time.Hour),
		products:  mocks.NewProductStore(),
		orders:    mocks.NewOrderStore(),
		carts:     mocks.NewCartStore(),
		couponDB:  mocks.NewCouponStore(),
		addresses: mocks.NewAddressStore(),
		users:     mocks.NewUserStore(),
	}
	offers := mocks.NewOfferStore()
	categories := mocks.NewCategoryStore()
	txns := mocks.NewTransactionStore()

	pricingSvc := pricing.NewService(offers, ts.products)
	productSvc := product.NewService(ts.products, pricingSvc)
	cartSvc := cart.NewService(ts.carts, ts.products, pricingSvc)
	couponSvc := coupon.NewService(ts.couponDB, ts.carts)
	walletSvc := wallet.NewService(txns)
	orderSvc := order.NewService(ts.orders, ts.products, ts.addresses, cartSvc, couponSvc, walletSvc, stubGateway{}, events.Nop{})

	handlers := NewHandlers(productSvc, cartSvc, couponSvc, orderSvc, walletSvc, ts.addresses)
	adminHandlers := NewAdminHandlers(productSvc, pricingSvc, couponSvc, orderSvc)
	authHandlers := NewAuthHandlers(ts.users, ts.jwt)
	categoryHandlers := NewCategoryHandlers(categories, productSvc)

	ts.router = NewRouter(handlers, adminHandlers, authHandlers, categoryHandlers, ts.jwt)
	return ts
}

func (ts *testServer) request(t *testing.T, method, path string, body any, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, _, err := ts.jwt.GenerateAccessToken(userID, userID+"@example.com", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer()

	rec := ts.request(t, http.MethodPost, "/auth/register", map[string]string{
		"email":    "shopper@example.com",
		"password": "correct-horse",
		"name":     "Shopper",
	}, "", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate email is a conflict.
	rec = ts.request(t, http.MethodPost, "/auth/register", map[string]string{
		"email":    "shopper@example.com",
		"password": "correct-horse",
		"name":     "Shopper",
	}, "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "shopper@example.com",
		"password": "correct-horse",
	}, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "shopper@example.com",
		"password": "wrong",
	}, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartFlow(t *testing.T) {
	ts := newTestServer()
	ts.products.Seed(model.Product{ID: "p1", Name: "Keyboard", Price: 500, DiscountedPrice: 500, Stock: 5, Active: true})

	rec := ts.request(t, http.MethodPost, "/cart/items", map[string]any{"product_id": "p1", "quantity": 2}, "u1", "customer")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodGet, "/cart", nil, "u1", "customer")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Items     []cart.Line `json:"items"`
		CartTotal float64     `json:"cart_total"`
		Total     float64     `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 1000.0, resp.Total)

	// Quantity above the per-item cap is rejected.
	rec = ts.request(t, http.MethodPost, "/cart/items", map[string]any{"product_id": "p1", "quantity": 20}, "u1", "customer")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRequiresAuth(t *testing.T) {
	ts := newTestServer()
	rec := ts.request(t, http.MethodGet, "/cart", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPlaceOrderOverHTTP(t *testing.T) {
	ts := newTestServer()
	ts.products.Seed(model.Product{ID: "p1", Name: "Keyboard", Price: 300, DiscountedPrice: 300, Stock: 5, Active: true})
	ts.carts.Seed(model.Cart{UserID: "u1", Items: []model.CartItem{{ProductID: "p1", Quantity: 2, BasePrice: 300, CartPrice: 300}}})
	ts.addresses.Seed(model.Address{ID: "a1", UserID: "u1", Name: "Home", Line1: "1 Main St", City: "Kochi", Pincode: "682001"})

	rec := ts.request(t, http.MethodPost, "/orders", map[string]string{
		"address_id":     "a1",
		"payment_method": model.PaymentMethodCOD,
	}, "u1", "customer")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var o model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, 640.0, o.TotalAmount)

	// Empty cart now: placing again is a 400.
	rec = ts.request(t, http.MethodPost, "/orders", map[string]string{
		"address_id":     "a1",
		"payment_method": model.PaymentMethodCOD,
	}, "u1", "customer")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCouponApplyConflict(t *testing.T) {
	ts := newTestServer()
	ts.products.Seed(model.Product{ID: "p1", Name: "Monitor", Price: 1000, DiscountedPrice: 1000, Stock: 5, Active: true})
	ts.carts.Seed(model.Cart{UserID: "u1", Items: []model.CartItem{{ProductID: "p1", Quantity: 1, BasePrice: 1000, CartPrice: 1000}}})
	ts.couponDB.Seed(model.Coupon{
		ID: "c1", Code: "SAVE20", Kind: model.DiscountPercentage, Value: 20, MaxDiscount: 100,
		MinPurchase: 200, ValidFrom: time.Now().Add(-time.Hour), ValidUntil: time.Now().Add(time.Hour),
		UsageLimit: 5, Active: true,
	})

	rec := ts.request(t, http.MethodPost, "/coupons/apply", map[string]string{"code": "SAVE20"}, "u1", "customer")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp["discount"])

	rec = ts.request(t, http.MethodPost, "/coupons/apply", map[string]string{"code": "SAVE20"}, "u1", "customer")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyPaymentSignatureMismatch(t *testing.T) {
	ts := newTestServer()
	ts.orders.Seed(model.Order{
		ID: "o1", UserID: "u1", PaymentMethod: model.PaymentMethodRazorpay,
		PaymentStatus: model.PaymentStatusPending, Status: model.OrderStatusPending,
		GatewayOrderID: "rzp_test",
	})

	rec := ts.request(t, http.MethodPost, "/payment/verify", map[string]string{
		"gateway_order_id": "rzp_test",
		"payment_id":       "pay_1",
		"signature":        "forged",
	}, "u1", "customer")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "signature_mismatch")
}

func TestAdminRoutesRequireRole(t *testing.T) {
	ts := newTestServer()

	rec := ts.request(t, http.MethodGet, "/admin/orders", nil, "u1", "customer")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.request(t, http.MethodGet, "/admin/orders", nil, "admin1", "admin")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	ts := newTestServer()
	ts.orders.Seed(model.Order{
		ID: "o1", UserID: "u1", PaymentMethod: model.PaymentMethodCOD,
		PaymentStatus: model.PaymentStatusPending, Status: model.OrderStatusPending,
	})

	rec := ts.request(t, http.MethodPut, "/admin/orders/o1/status", map[string]string{"status": "shipped"}, "admin1", "admin")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Cancelling a shipped order is rejected.
	rec = ts.request(t, http.MethodPut, "/admin/orders/o1/status", map[string]string{"status": "cancelled"}, "admin1", "admin")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProductsPublic(t *testing.T) {
	ts := newTestServer()
	ts.products.Seed(model.Product{ID: "p1", Name: "Keyboard", Price: 500, DiscountedPrice: 500, Stock: 5, Active: true})

	rec := ts.request(t, http.MethodGet, "/products", nil, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodGet, "/products/p1", nil, "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(t, http.MethodGet, "/products/missing", nil, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
