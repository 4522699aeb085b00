package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storyboard-server/internal/models"
)

// Compile-time check to ensure mongoStore implements Store
var _ Store = (*mongoStore)(nil)

type slotDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoStore struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// NewMongoStore creates a Store over a collection keyed by _id.
func NewMongoStore(coll *mongo.Collection, logger *zap.Logger) Store {
	return &mongoStore{
		coll:   coll,
		logger: logger.Named("MongoKV"),
	}
}

func (r *mongoStore) Get(ctx context.Context, key string) (string, error) {
	var doc slotDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", models.ErrKeyNotFound
		}
		r.logger.Error("Failed to get slot from mongo", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to get slot %q from mongo: %w", key, err)
	}
	return doc.Value, nil
}

func (r *mongoStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to upsert slot in mongo", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upsert slot %q in mongo: %w", key, err)
	}
	return nil
}

func (r *mongoStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		r.logger.Error("Failed to delete slots from mongo", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("failed to delete slots from mongo: %w", err)
	}
	return nil
}
