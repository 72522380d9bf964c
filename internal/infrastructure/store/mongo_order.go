package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/ec-shop/internal/model"
)

// MongoOrderStore implements OrderStore on the orders collection.
// Orders are never deleted, only status-transitioned.
type MongoOrderStore struct {
	col *mongo.Collection
}

func (s *MongoOrderStore) Insert(ctx context.Context, o *model.Order) error {
	_, err := s.col.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoOrderStore) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoOrderStore) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	var o model.Order
	err := s.col.FindOne(ctx, bson.M{"gatewayOrderId": gatewayOrderID}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoOrderStore) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return s.list(ctx, bson.M{"userId": userID})
}

func (s *MongoOrderStore) ListAll(ctx context.Context) ([]model.Order, error) {
	return s.list(ctx, bson.M{})
}

func (s *MongoOrderStore) list(ctx context.Context, filter bson.M) ([]model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []model.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// TransitionStatus flips status from -> to in one conditional update.
// A second concurrent transition loses the race and gets ErrConflict.
func (s *MongoOrderStore) TransitionStatus(ctx context.Context, orderID, from, to, paymentStatus string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": orderID, "status": from},
		bson.M{"$set": bson.M{
			"status":        to,
			"paymentStatus": paymentStatus,
		}, "$currentDate": bson.M{"updatedAt": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (s *MongoOrderStore) MarkPaid(ctx context.Context, gatewayOrderID, paymentID string) (*model.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var o model.Order
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"gatewayOrderId": gatewayOrderID, "paymentStatus": bson.M{"$in": bson.A{model.PaymentStatusPending, model.PaymentStatusFailed}}},
		bson.M{"$set": bson.M{
			"paymentStatus":    model.PaymentStatusPaid,
			"gatewayPaymentId": paymentID,
		}, "$currentDate": bson.M{"updatedAt": true}},
		opts).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *MongoOrderStore) MarkPaymentFailed(ctx context.Context, gatewayOrderID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"gatewayOrderId": gatewayOrderID, "paymentStatus": model.PaymentStatusPending},
		bson.M{"$set": bson.M{"paymentStatus": model.PaymentStatusFailed},
			"$currentDate": bson.M{"updatedAt": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoOrderStore) SetGatewayOrder(ctx context.Context, orderID, gatewayOrderID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": orderID},
		bson.M{"$set": bson.M{"gatewayOrderId": gatewayOrderID},
			"$currentDate": bson.M{"updatedAt": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
