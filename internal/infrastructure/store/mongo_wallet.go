package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/ec-shop/internal/model"
)

// MongoTransactionStore implements TransactionStore on the append-only
// transactions collection.
type MongoTransactionStore struct {
	col *mongo.Collection
}

func (s *MongoTransactionStore) Insert(ctx context.Context, t *model.Transaction) error {
	_, err := s.col.InsertOne(ctx, t)
	return err
}

func (s *MongoTransactionStore) ListByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txns []model.Transaction
	if err := cursor.All(ctx, &txns); err != nil {
		return nil, err
	}
	return txns, nil
}

// Balance derives the wallet balance by aggregating the ledger: credits
// count positive, debits negative. The balance is never stored.
func (s *MongoTransactionStore) Balance(ctx context.Context, userID string) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"balance": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$type", model.TransactionCredit}},
				"$amount",
				bson.M{"$multiply": bson.A{"$amount", -1}},
			}}},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Balance float64 `bson:"balance"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Balance, nil
}
