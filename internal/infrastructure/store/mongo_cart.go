package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/ec-shop/internal/model"
)

// MongoCartStore implements CartStore with one cart document per user.
type MongoCartStore struct {
	col *mongo.Collection
}

func (s *MongoCartStore) Get(ctx context.Context, userID string) (*model.Cart, error) {
	var c model.Cart
	err := s.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoCartStore) Save(ctx context.Context, c *model.Cart) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": c.UserID}, c, opts)
	return err
}

func (s *MongoCartStore) Clear(ctx context.Context, userID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}

func (s *MongoCartStore) SetCoupon(ctx context.Context, userID, code string) error {
	update := bson.M{"$set": bson.M{"couponCode": code}}
	if code == "" {
		update = bson.M{"$unset": bson.M{"couponCode": ""}}
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
