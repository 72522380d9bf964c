package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/ec-shop/internal/model"
)

// MongoUserStore implements UserStore on the users collection.
type MongoUserStore struct {
	col *mongo.Collection
}

func (s *MongoUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) Insert(ctx context.Context, u *model.User) error {
	_, err := s.col.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// MongoAddressStore implements AddressStore on the addresses collection.
type MongoAddressStore struct {
	col *mongo.Collection
}

func (s *MongoAddressStore) GetByID(ctx context.Context, id string) (*model.Address, error) {
	var a model.Address
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *MongoAddressStore) ListByUser(ctx context.Context, userID string) ([]model.Address, error) {
	cursor, err := s.col.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var addresses []model.Address
	if err := cursor.All(ctx, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *MongoAddressStore) Insert(ctx context.Context, a *model.Address) error {
	_, err := s.col.InsertOne(ctx, a)
	return err
}
