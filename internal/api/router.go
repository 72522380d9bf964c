package api

import (
	"log"
	"net/http"
	"strings"

	"github.com/example/ec-shop/internal/api/middleware"
	"github.com/example/ec-shop/internal/auth"
)

func NewRouter(
	handlers *Handlers,
	adminHandlers *AdminHandlers,
	authHandlers *AuthHandlers,
	categoryHandlers *CategoryHandlers,
	jwtService *auth.JWTService,
) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.AuthMiddleware(jwtService)
	optionalAuth := middleware.OptionalAuthMiddleware(jwtService)
	requireAdmin := func(h http.Handler) http.Handler {
		return requireAuth(middleware.RequireRole("admin")(h))
	}

	// Auth
	mux.HandleFunc("/auth/register", methodHandler(http.MethodPost, authHandlers.Register))
	mux.HandleFunc("/auth/login", methodHandler(http.MethodPost, authHandlers.Login))
	mux.HandleFunc("/auth/logout", methodHandler(http.MethodPost, authHandlers.Logout))
	mux.HandleFunc("/auth/refresh", methodHandler(http.MethodPost, authHandlers.Refresh))
	mux.Handle("/auth/me", requireAuth(methodHandler(http.MethodGet, authHandlers.Me)))

	// Catalog (public; auth optional so future personalization has claims)
	mux.Handle("/products", optionalAuth(methodHandler(http.MethodGet, handlers.GetProducts)))
	mux.Handle("/products/", optionalAuth(methodHandler(http.MethodGet, handlers.GetProduct)))
	mux.Handle("/categories", optionalAuth(methodHandler(http.MethodGet, categoryHandlers.ListCategories)))
	mux.Handle("/categories/", optionalAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/products") {
			categoryHandlers.GetProductsByCategory(w, r)
			return
		}
		categoryHandlers.GetCategory(w, r)
	})))

	// Cart
	mux.Handle("/cart", requireAuth(methodHandler(http.MethodGet, handlers.GetCart)))
	mux.Handle("/cart/items", requireAuth(methodHandler(http.MethodPost, handlers.AddToCart)))
	mux.Handle("/cart/items/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			handlers.UpdateCartItem(w, r)
		case http.MethodDelete:
			handlers.RemoveFromCart(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Coupons
	mux.Handle("/coupons", requireAuth(methodHandler(http.MethodGet, handlers.ListCoupons)))
	mux.Handle("/coupons/apply", requireAuth(methodHandler(http.MethodPost, handlers.ApplyCoupon)))
	mux.Handle("/coupons/remove", requireAuth(methodHandler(http.MethodPost, handlers.RemoveCoupon)))

	// Orders
	mux.Handle("/orders", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.GetOrders(w, r)
		case http.MethodPost:
			handlers.PlaceOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/orders/", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/cancel") && r.Method == http.MethodPost:
			handlers.CancelOrder(w, r)
		case strings.HasSuffix(path, "/return") && r.Method == http.MethodPost:
			handlers.ReturnOrder(w, r)
		case r.Method == http.MethodGet:
			handlers.GetOrder(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Payment
	mux.Handle("/payment/order", requireAuth(methodHandler(http.MethodPost, handlers.CreatePaymentOrder)))
	mux.Handle("/payment/verify", requireAuth(methodHandler(http.MethodPost, handlers.VerifyPayment)))
	mux.Handle("/payment/failed", requireAuth(methodHandler(http.MethodPost, handlers.PaymentFailed)))

	// Wallet
	mux.Handle("/wallet", requireAuth(methodHandler(http.MethodGet, handlers.GetWallet)))
	mux.Handle("/wallet/transactions", requireAuth(methodHandler(http.MethodGet, handlers.GetWalletTransactions)))

	// Addresses
	mux.Handle("/addresses", requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			handlers.ListAddresses(w, r)
		case http.MethodPost:
			handlers.CreateAddress(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	// Admin
	mux.Handle("/admin/orders", requireAdmin(methodHandler(http.MethodGet, adminHandlers.ListOrders)))
	mux.Handle("/admin/orders/", requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/status") && r.Method == http.MethodPut {
			adminHandlers.UpdateOrderStatus(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})))
	mux.Handle("/admin/offers", requireAdmin(methodHandler(http.MethodPost, adminHandlers.CreateOffer)))
	mux.Handle("/admin/offers/", requireAdmin(methodHandler(http.MethodPut, adminHandlers.UpdateOffer)))
	mux.Handle("/admin/coupons", requireAdmin(methodHandler(http.MethodPost, adminHandlers.CreateCoupon)))
	mux.Handle("/admin/coupons/", requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			adminHandlers.UpdateCoupon(w, r)
		case http.MethodDelete:
			adminHandlers.DeleteCoupon(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))
	mux.Handle("/admin/products", requireAdmin(methodHandler(http.MethodPost, adminHandlers.CreateProduct)))
	mux.Handle("/admin/products/", requireAdmin(methodHandler(http.MethodPut, adminHandlers.UpdateProduct)))

	return withLogging(mux)
}

func methodHandler(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[API] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
