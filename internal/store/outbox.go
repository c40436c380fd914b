package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repairhub/internal/models"
)

type MongoOutboxStore struct {
	coll *mongo.Collection
}

func NewOutboxStore(db *mongo.Database) *MongoOutboxStore {
	return &MongoOutboxStore{coll: db.Collection(outboxCollection)}
}

func (s *MongoOutboxStore) Enqueue(ctx context.Context, entry *models.PushOutboxEntry) error {
	now := time.Now()
	entry.ID = primitive.NewObjectID()
	entry.State = models.OutboxPending
	entry.CreatedAt = now
	entry.UpdatedAt = now
	if entry.NextAttempt.IsZero() {
		entry.NextAttempt = now
	}
	if _, err := s.coll.InsertOne(ctx, entry); err != nil {
		return errors.Wrap(err, "enqueue push")
	}
	return nil
}

func (s *MongoOutboxStore) Due(ctx context.Context, now time.Time, limit int64) ([]models.PushOutboxEntry, error) {
	cur, err := s.coll.Find(ctx,
		bson.M{"state": models.OutboxPending, "nextAttempt": bson.M{"$lte": now}},
		options.Find().SetSort(bson.D{{Key: "nextAttempt", Value: 1}}).SetLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "find due pushes")
	}
	out := []models.PushOutboxEntry{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode due pushes")
	}
	return out, nil
}

func (s *MongoOutboxStore) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"state": models.OutboxSent, "updatedAt": time.Now()},
		"$inc": bson.M{"attempts": 1},
	})
	return errors.Wrap(err, "mark push sent")
}

func (s *MongoOutboxStore) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time, dead bool) error {
	state := models.OutboxPending
	if dead {
		state = models.OutboxDead
	}
	_, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"state":       state,
		"attempts":    attempts,
		"lastError":   lastErr,
		"nextAttempt": next,
		"updatedAt":   time.Now(),
	}})
	return errors.Wrap(err, "mark push failed")
}
