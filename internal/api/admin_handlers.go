package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/ec-shop/internal/domain/coupon"
	"github.com/example/ec-shop/internal/domain/order"
	"github.com/example/ec-shop/internal/domain/pricing"
	"github.com/example/ec-shop/internal/domain/product"
	"github.com/example/ec-shop/internal/model"
)

// AdminHandlers groups the back-office endpoints. All of them sit
// behind RequireRole("admin") in the router.
type AdminHandlers struct {
	products *product.Service
	pricing  *pricing.Service
	coupons  *coupon.Service
	orders   *order.Service
}

func NewAdminHandlers(
	products *product.Service,
	pricingSvc *pricing.Service,
	coupons *coupon.Service,
	orders *order.Service,
) *AdminHandlers {
	return &AdminHandlers{
		products: products,
		pricing:  pricingSvc,
		coupons:  coupons,
		orders:   orders,
	}
}

// Orders

func (h *AdminHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *AdminHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(extractPathParam(r.URL.Path, "/admin/orders/"), "/status")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.orders.UpdateStatus(r.Context(), id, req.Status); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order status updated"})
}

// Offers

func (h *AdminHandlers) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var o model.Offer
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.pricing.CreateOffer(r.Context(), &o); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *AdminHandlers) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/offers/")

	var o model.Offer
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	o.ID = id

	if err := h.pricing.UpdateOffer(r.Context(), &o); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Coupons

func (h *AdminHandlers) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c model.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.coupons.Create(r.Context(), &c); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *AdminHandlers) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/coupons/")

	var c model.Coupon
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	c.ID = id

	if err := h.coupons.Update(r.Context(), &c); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *AdminHandlers) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/coupons/")

	if err := h.coupons.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Coupon deleted"})
}

// Products

func (h *AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *AdminHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/admin/products/")

	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	p.ID = id

	if err := h.products.Update(r.Context(), &p); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
