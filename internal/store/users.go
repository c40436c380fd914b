package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repairhub/internal/models"
)

type MongoUserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{coll: db.Collection(usersCollection)}
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Addresses == nil {
		user.Addresses = []models.UserAddress{}
	}
	if user.Notifications == nil {
		user.Notifications = []models.Notification{}
	}
	if user.Orders == nil {
		user.Orders = []primitive.ObjectID{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, user); err != nil {
		return wrapWrite(err, "insert user")
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, wrapFind(err, "find user")
	}
	return &user, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, wrapFind(err, "find user by email")
	}
	return &user, nil
}

func (s *MongoUserStore) set(ctx context.Context, id primitive.ObjectID, fields bson.M, what string) error {
	fields["updatedAt"] = time.Now()
	res, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return wrapWrite(err, what)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	return s.set(ctx, id, bson.M{"verified": true}, "verify user")
}

// SetPassword also marks the account verified.
func (s *MongoUserStore) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.set(ctx, id, bson.M{"password": hash, "verified": true}, "set password")
}

func (s *MongoUserStore) SetGoogleID(ctx context.Context, id primitive.ObjectID, googleID string) error {
	return s.set(ctx, id, bson.M{"googleId": googleID}, "set google id")
}

func (s *MongoUserStore) SetPushToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return s.set(ctx, id, bson.M{"expoPushToken": token}, "set push token")
}

func (s *MongoUserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error) {
	set := bson.M{
		"name":      update.Name,
		"updatedAt": time.Now(),
	}
	unset := bson.M{}
	for key, value := range map[string]string{"phone": update.Phone, "gender": update.Gender} {
		if value == "" {
			unset[key] = ""
		} else {
			set[key] = value
		}
	}
	if update.Birthday != nil {
		set["birthday"] = *update.Birthday
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, doc,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&user)
	if err != nil {
		return nil, wrapFind(err, "update profile")
	}
	return &user, nil
}

func (s *MongoUserStore) SaveAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.UserAddress, defaultID string) error {
	if addresses == nil {
		addresses = []models.UserAddress{}
	}
	return s.set(ctx, id, bson.M{"addresses": addresses, "defaultAddress": defaultID}, "save addresses")
}

func (s *MongoUserStore) AppendNotification(ctx context.Context, id primitive.ObjectID, n models.Notification) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"notifications": n},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return wrapWrite(err, "append notification")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordOrder links a new order to its owner and appends its first notification in one write.
func (s *MongoUserStore) RecordOrder(ctx context.Context, id primitive.ObjectID, orderID primitive.ObjectID, n models.Notification) error {
	res, err := s.coll.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{
			"orders":        orderID,
			"notifications": n,
		},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return wrapWrite(err, "record order")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
