package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/ec-shop/internal/api"
	"github.com/example/ec-shop/internal/auth"
	"github.com/example/ec-shop/internal/domain/cart"
	"github.com/example/ec-shop/internal/domain/coupon"
	"github.com/example/ec-shop/internal/domain/order"
	"github.com/example/ec-shop/internal/domain/pricing"
	"github.com/example/ec-shop/internal/domain/product"
	"github.com/example/ec-shop/internal/domain/wallet"
	"github.com/example/ec-shop/internal/events"
	"github.com/example/ec-shop/internal/infrastructure/kafka"
	"github.com/example/ec-shop/internal/infrastructure/store"
	"github.com/example/ec-shop/internal/payment"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Configuration from environment variables
	listenAddr := getEnv("LISTEN_ADDR", ":8080")
	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017")
	mongoDB := getEnv("MONGO_DB", "ecshop")
	kafkaBrokersStr := getEnv("KAFKA_BROKERS", "")
	kafkaTopic := getEnv("KAFKA_TOPIC", "order-events")
	razorpayURL := getEnv("RAZORPAY_URL", "https://api.razorpay.com")
	razorpayKeyID := getEnv("RAZORPAY_KEY_ID", "")
	razorpayKeySecret := getEnv("RAZORPAY_KEY_SECRET", "")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("[API] JWT_SECRET environment variable is required")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("[API] JWT_SECRET must be at least 32 characters long")
	}

	log.Println("[API] ========================================")
	log.Println("[API] EC Shop API")
	log.Println("[API] ========================================")
	log.Printf("[API] MongoDB: %s/%s", mongoURI, mongoDB)

	// Initialize MongoDB
	db, err := store.Connect(ctx, mongoURI, mongoDB)
	if err != nil {
		log.Fatalf("[API] Failed to connect to MongoDB: %v", err)
	}
	defer db.Client().Disconnect(context.Background())
	if err := store.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("[API] Failed to create indexes: %v", err)
	}
	log.Println("[API] Connected to MongoDB")

	stores := store.NewStores(db)

	// Initialize event publisher
	var publisher events.Publisher = events.Nop{}
	if kafkaBrokersStr != "" {
		kafkaBrokers := strings.Split(kafkaBrokersStr, ",")
		log.Printf("[API] Kafka: %v topic %s", kafkaBrokers, kafkaTopic)
		producer := kafka.NewProducer(kafkaBrokers, kafkaTopic)
		defer producer.Close()
		publisher = events.NewKafkaPublisher(producer)
	} else {
		log.Println("[API] Kafka not configured, events disabled")
	}

	// Initialize payment gateway
	gateway := payment.NewRazorpayClient(razorpayURL, razorpayKeyID, razorpayKeySecret)

	// Initialize domain services
	pricingSvc := pricing.NewService(stores.Offers, stores.Products)
	productSvc := product.NewService(stores.Products, pricingSvc)
	cartSvc := cart.NewService(stores.Carts, stores.Products, pricingSvc)
	couponSvc := coupon.NewService(stores.Coupons, stores.Carts)
	walletSvc := wallet.NewService(stores.Transactions)
	orderSvc := order.NewService(
		stores.Orders,
		stores.Products,
		stores.Addresses,
		cartSvc,
		couponSvc,
		walletSvc,
		gateway,
		publisher,
	)

	// Initialize JWT service
	jwtService := auth.NewJWTService(
		jwtSecret,
		15*time.Minute, // Access token expiry
		7*24*time.Hour, // Refresh token expiry (7 days)
	)

	// Initialize API
	handlers := api.NewHandlers(productSvc, cartSvc, couponSvc, orderSvc, walletSvc, stores.Addresses)
	adminHandlers := api.NewAdminHandlers(productSvc, pricingSvc, couponSvc, orderSvc)
	authHandlers := api.NewAuthHandlers(stores.Users, jwtService)
	categoryHandlers := api.NewCategoryHandlers(stores.Categories, productSvc)
	router := api.NewRouter(handlers, adminHandlers, authHandlers, categoryHandlers, jwtService)

	// Start HTTP server
	server := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", listenAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
