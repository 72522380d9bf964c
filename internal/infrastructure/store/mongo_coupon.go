package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/ec-shop/internal/model"
)

// MongoCouponStore implements CouponStore on the coupons collection.
type MongoCouponStore struct {
	col *mongo.Collection
}

func (s *MongoCouponStore) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := s.col.FindOne(ctx, bson.M{"code": code}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoCouponStore) GetByID(ctx context.Context, id string) (*model.Coupon, error) {
	var c model.Coupon
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoCouponStore) ListActive(ctx context.Context, now time.Time) ([]model.Coupon, error) {
	cursor, err := s.col.Find(ctx, bson.M{
		"active":     true,
		"validFrom":  bson.M{"$lte": now},
		"validUntil": bson.M{"$gt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var coupons []model.Coupon
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

func (s *MongoCouponStore) Insert(ctx context.Context, c *model.Coupon) error {
	_, err := s.col.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoCouponStore) Update(ctx context.Context, c *model.Coupon) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCouponStore) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RegisterUse performs the validation and the mutation as one
// conditional update, so two racing applications of the same coupon by
// the same user cannot both register.
func (s *MongoCouponStore) RegisterUse(ctx context.Context, couponID, userID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{
			"_id":           couponID,
			"$expr":         bson.M{"$lt": bson.A{"$usageCount", "$usageLimit"}},
			"usedBy.userId": bson.M{"$ne": userID},
		},
		bson.M{
			"$inc":  bson.M{"usageCount": 1},
			"$push": bson.M{"usedBy": model.CouponUsage{UserID: userID, Count: 1}},
		})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (s *MongoCouponStore) RemoveUse(ctx context.Context, couponID, userID string) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": couponID, "usedBy.userId": userID},
		bson.M{
			"$inc":  bson.M{"usageCount": -1},
			"$pull": bson.M{"usedBy": bson.M{"userId": userID}},
		})
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return ErrConflict
	}
	return nil
}
