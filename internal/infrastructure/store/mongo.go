package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Connect opens a MongoDB client and verifies the connection.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(dbName), nil
}

// Stores bundles the Mongo-backed store implementations.
type Stores struct {
	Products     ProductStore
	Offers       OfferStore
	Carts        CartStore
	Coupons      CouponStore
	Orders       OrderStore
	Transactions TransactionStore
	Addresses    AddressStore
	Users        UserStore
	Categories   CategoryStore
}

func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Products:     &MongoProductStore{col: db.Collection("products")},
		Offers:       &MongoOfferStore{col: db.Collection("offers")},
		Carts:        &MongoCartStore{col: db.Collection("carts")},
		Coupons:      &MongoCouponStore{col: db.Collection("coupons")},
		Orders:       &MongoOrderStore{col: db.Collection("orders")},
		Transactions: &MongoTransactionStore{col: db.Collection("transactions")},
		Addresses:    &MongoAddressStore{col: db.Collection("addresses")},
		Users:        &MongoUserStore{col: db.Collection("users")},
		Categories:   &MongoCategoryStore{col: db.Collection("categories")},
	}
}

// EnsureIndexes creates the unique indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection("coupons").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("coupons code index: %w", err)
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("users email index: %w", err)
	}

	_, err = db.Collection("orders").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("orders reference index: %w", err)
	}

	return nil
}
