package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"repairhub/internal/models"
)

// MongoTokenStore keeps hashes of logged-out refresh tokens. A TTL index on
// expiresAt drops each entry once the token could no longer be used anyway.
type MongoTokenStore struct {
	coll *mongo.Collection
}

func NewTokenStore(db *mongo.Database) *MongoTokenStore {
	return &MongoTokenStore{coll: db.Collection(revokedTokensCollection)}
}

func (s *MongoTokenStore) Revoke(ctx context.Context, token models.RevokedToken) error {
	token.CreatedAt = time.Now()
	_, err := s.coll.InsertOne(ctx, token)
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "revoke token")
	}
	return nil
}

func (s *MongoTokenStore) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"tokenHash": tokenHash})
	if err != nil {
		return false, errors.Wrap(err, "check revoked token")
	}
	return n > 0, nil
}
