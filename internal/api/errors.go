package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/example/ec-shop/internal/auth"
	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/coupon"
	"github.com/example/ec-shop/internal/domain/order"
	"github.com/example/ec-shop/internal/domain/pricing"
	"github.com/example/ec-shop/internal/domain/product"
	"github.com/example/ec-shop/internal/domain/wallet"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/payment"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, errorResponse{Error: message})
}

var notFoundErrors = []error{
	store.ErrNotFound,
	product.ErrProductNotFound,
	cart.ErrProductNotFound,
	cart.ErrItemNotFound,
	coupon.ErrCouponNotFound,
	order.ErrOrderNotFound,
	order.ErrAddressNotFound,
	pricing.ErrOfferNotFound,
}

var validationErrors = []error{
	cart.ErrInvalidQuantity,
	cart.ErrQuantityLimit,
	cart.ErrProductUnavailable,
	coupon.ErrExpired,
	coupon.ErrBelowMinimum,
	coupon.ErrNotApplied,
	coupon.ErrInvalidCoupon,
	order.ErrEmptyCart,
	order.ErrInvalidPaymentMethod,
	order.ErrPaymentMethodNotAllowed,
	wallet.ErrInvalidAmount,
	wallet.ErrInsufficientBalance,
	product.ErrInvalidProduct,
	pricing.ErrInvalidOffer,
	pricing.ErrInvalidWindow,
	pricing.ErrUnknownScope,
	pricing.ErrUnknownKind,
	pricing.ErrNoOfferTargets,
	auth.ErrPasswordTooShort,
	auth.ErrPasswordTooLong,
}

var conflictErrors = []error{
	store.ErrDuplicate,
	store.ErrConflict,
	cart.ErrInsufficientStock,
	coupon.ErrAlreadyUsed,
	coupon.ErrLimitReached,
	coupon.ErrDuplicateCode,
	order.ErrOutOfStock,
	order.ErrAlreadyProcessed,
	order.ErrNotDelivered,
	order.ErrInvalidTransition,
	order.ErrPaymentNotPending,
}

// respondError maps domain errors onto HTTP statuses. Anything
// unrecognized is logged and reported as a generic 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrSignatureMismatch):
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "signature_mismatch"})
	case errors.Is(err, order.ErrForbidden):
		respondJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, payment.ErrGatewayUnavailable):
		respondJSONError(w, "payment gateway unavailable", http.StatusBadGateway)
	case matchesAny(err, notFoundErrors):
		respondJSONError(w, err.Error(), http.StatusNotFound)
	case matchesAny(err, validationErrors):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case matchesAny(err, conflictErrors):
		respondJSONError(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("[API] Internal error: %v", err)
		respondJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
