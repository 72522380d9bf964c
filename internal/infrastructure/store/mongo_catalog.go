package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/ec-shop/internal/model"
)

// MongoProductStore implements ProductStore on the products collection.
type MongoProductStore struct {
	col *mongo.Collection
}

func (s *MongoProductStore) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoProductStore) ListActive(ctx context.Context) ([]model.Product, error) {
	cursor, err := s.col.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoProductStore) Insert(ctx context.Context, p *model.Product) error {
	_, err := s.col.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoProductStore) Update(ctx context.Context, p *model.Product) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoProductStore) SetCachedPrice(ctx context.Context, id string, price float64) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"discountedPrice": price}})
	return err
}

// DecrementStock is a single conditional update: the filter requires
// enough stock, so two racing checkouts over the last units cannot both
// match.
func (s *MongoProductStore) DecrementStock(ctx context.Context, id string, qty int) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "stock": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrInsufficientStock
	}
	return nil
}

func (s *MongoProductStore) IncrementStock(ctx context.Context, id string, qty int) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"stock": qty}})
	return err
}

// MongoOfferStore implements OfferStore on the offers collection.
type MongoOfferStore struct {
	col *mongo.Collection
}

func (s *MongoOfferStore) GetByID(ctx context.Context, id string) (*model.Offer, error) {
	var o model.Offer
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoOfferStore) ListActive(ctx context.Context, now time.Time) ([]model.Offer, error) {
	cursor, err := s.col.Find(ctx, bson.M{
		"active":     true,
		"validFrom":  bson.M{"$lte": now},
		"validUntil": bson.M{"$gt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var offers []model.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, err
	}
	return offers, nil
}

func (s *MongoOfferStore) Insert(ctx context.Context, o *model.Offer) error {
	_, err := s.col.InsertOne(ctx, o)
	return err
}

func (s *MongoOfferStore) Update(ctx context.Context, o *model.Offer) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoCategoryStore implements CategoryStore on the categories collection.
type MongoCategoryStore struct {
	col *mongo.Collection
}

func (s *MongoCategoryStore) GetByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoCategoryStore) ListActive(ctx context.Context) ([]model.Category, error) {
	cursor, err := s.col.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []model.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
