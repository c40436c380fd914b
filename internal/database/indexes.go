package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func ensureIndexes(db *mongo.Database, collection string, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := zap.L().Named("database").With(zap.String("collection", collection))
	log.Info("creating indexes", zap.Int("count", len(models)))

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Error("index creation failed", zap.Error(err))
		return err
	}
	log.Info("indexes ready", zap.Strings("names", names))
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "users", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
	})
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "orders", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetName("phone_index"),
		},
		{
			Keys:    bson.D{{Key: "bookingTime", Value: -1}},
			Options: options.Index().SetName("bookingTime_index"),
		},
	})
}

func EnsureCatalogIndexes(db *mongo.Database) error {
	if err := ensureIndexes(db, "addresses", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parentId", Value: 1}, {Key: "displayName", Value: 1}},
			Options: options.Index().SetName("parentId_displayName"),
		},
	}); err != nil {
		return err
	}
	if err := ensureIndexes(db, "agents", []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("name_index")},
	}); err != nil {
		return err
	}
	if err := ensureIndexes(db, "technicians", []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("name_index")},
		{Keys: bson.D{{Key: "agent._id", Value: 1}}, Options: options.Index().SetName("agentId_index")},
	}); err != nil {
		return err
	}
	return ensureIndexes(db, "products", []mongo.IndexModel{
		{Keys: bson.D{{Key: "iconName", Value: 1}}, Options: options.Index().SetName("iconName_index")},
	})
}

func EnsureTokenIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "revoked_tokens", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tokenHash", Value: 1}},
			Options: options.Index().SetName("tokenHash_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expiresAt", Value: 1}},
			Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
		},
	})
}

func EnsureOutboxIndexes(db *mongo.Database) error {
	return ensureIndexes(db, "push_outbox", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}, {Key: "nextAttempt", Value: 1}},
			Options: options.Index().SetName("state_nextAttempt"),
		},
	})
}

// EnsureAll creates every index the application relies on. Failures are
// logged and returned together so start-up can decide whether to continue.
func EnsureAll(db *mongo.Database) []error {
	var errs []error
	for _, fn := range []func(*mongo.Database) error{
		EnsureUserIndexes,
		EnsureOrderIndexes,
		EnsureCatalogIndexes,
		EnsureTokenIndexes,
		EnsureOutboxIndexes,
	} {
		if err := fn(db); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
