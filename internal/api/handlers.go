package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/ec-shop/internal/api/middleware"
	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/coupon"
	"github.com/example/ec-shop/internal/domain/order"
	"github.com/example/ec-shop/internal/domain/product"
	"github.com/example/ec-shop/internal/domain/wallet"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/model"
	"github.com/google/uuid"
)

type Handlers struct {
	products  *product.Service
	carts     *cart.Service
	coupons   *coupon.Service
	orders    *order.Service
	wallet    *wallet.Service
	addresses store.AddressStore
}

func NewHandlers(
	products *product.Service,
	carts *cart.Service,
	coupons *coupon.Service,
	orders *order.Service,
	walletSvc *wallet.Service,
	addresses store.AddressStore,
) *Handlers {
	return &Handlers{
		products:  products,
		carts:     carts,
		coupons:   coupons,
		orders:    orders,
		wallet:    walletSvc,
		addresses: addresses,
	}
}

// Product Handlers

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Cart Handlers

type cartResponse struct {
	Items      []cart.Line `json:"items"`
	CouponCode string      `json:"coupon_code,omitempty"`
	cart.Totals
}

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	lines, err := h.carts.PricedLines(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	c, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cartResponse{
		Items:      lines,
		CouponCode: c.CouponCode,
		Totals:     cart.CalculateTotals(lines),
	})
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.carts.AddItem(r.Context(), userID, req.ProductID, req.Quantity); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item added to cart"})
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.carts.UpdateQuantity(r.Context(), userID, productID, req.Quantity); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Cart updated"})
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	productID := extractPathParam(r.URL.Path, "/cart/items/")

	if err := h.carts.RemoveItem(r.Context(), userID, productID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

// Coupon Handlers

func (h *Handlers) ListCoupons(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	coupons, err := h.coupons.ListApplicable(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, coupons)
}

func (h *Handlers) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lines, err := h.carts.PricedLines(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	totals := cart.CalculateTotals(lines)

	discount, err := h.coupons.Apply(r.Context(), userID, req.Code, totals.Total)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"message":  "Coupon applied",
		"discount": discount,
	})
}

func (h *Handlers) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.coupons.Remove(r.Context(), userID, req.Code); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Coupon removed"})
}

// Order Handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		AddressID     string `json:"address_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.Place(r.Context(), userID, req.AddressID, req.PaymentMethod)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := extractPathParam(r.URL.Path, "/orders/")

	o, err := h.orders.Get(r.Context(), userID, id, middleware.IsAdmin(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/cancel")

	if err := h.orders.Cancel(r.Context(), userID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order cancelled"})
}

func (h *Handlers) ReturnOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/orders/"), "/return")

	if err := h.orders.Return(r.Context(), userID, id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order returned"})
}

// Payment Handlers

func (h *Handlers) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	gw, err := h.orders.CreateGatewayOrder(r.Context(), userID, req.OrderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, gw)
}

func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		GatewayOrderID string `json:"gateway_order_id"`
		PaymentID      string `json:"payment_id"`
		Signature      string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.orders.VerifyPayment(r.Context(), userID, req.GatewayOrderID, req.PaymentID, req.Signature)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) PaymentFailed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		GatewayOrderID string `json:"gateway_order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.orders.MarkPaymentFailed(r.Context(), userID, req.GatewayOrderID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Payment marked as failed"})
}

// Wallet Handlers

func (h *Handlers) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	balance, err := h.wallet.Balance(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

func (h *Handlers) GetWalletTransactions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	txns, err := h.wallet.History(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txns)
}

// Address Handlers

func (h *Handlers) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	addrs, err := h.addresses.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, addrs)
}

func (h *Handlers) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var addr model.Address
	if err := json.NewDecoder(r.Body).Decode(&addr); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if addr.Name == "" || addr.Line1 == "" || addr.City == "" || addr.Pincode == "" {
		respondJSONError(w, "name, line1, city and pincode are required", http.StatusBadRequest)
		return
	}
	addr.ID = uuid.New().String()
	addr.UserID = userID

	if err := h.addresses.Insert(r.Context(), &addr); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, addr)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
