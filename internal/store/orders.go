package store

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repairhub/internal/models"
)

type MongoOrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *MongoOrderStore {
	return &MongoOrderStore{coll: db.Collection(ordersCollection)}
}

func (s *MongoOrderStore) Insert(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	if order.Payment == nil {
		order.Payment = []models.Payment{}
	}
	if _, err := s.coll.InsertOne(ctx, order); err != nil {
		return wrapWrite(err, "insert order")
	}
	return nil
}

func (s *MongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, wrapFind(err, "find order")
	}
	return &order, nil
}

func (s *MongoOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cur, err := s.coll.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "bookingTime", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list user orders")
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, errors.Wrap(err, "decode user orders")
	}
	return orders, nil
}

// Transition appends status (and the payment, when present) with $push and
// sets the scalar fields of update in the same single-document write. A
// payment whose tran_id is already on the order is not written again.
func (s *MongoOrderStore) Transition(ctx context.Context, id primitive.ObjectID, update OrderUpdate, status models.Status) (*models.Order, error) {
	filter := bson.M{"_id": id}
	push := bson.M{"status": status}
	if update.Payment != nil {
		push["payment"] = *update.Payment
		filter["payment.tran_id"] = bson.M{"$ne": update.Payment.TranID}
	}
	doc := bson.M{"$push": push}

	set := bson.M{}
	if update.Problem != nil {
		set["problem"] = *update.Problem
	}
	if update.Note != nil {
		set["note"] = *update.Note
	}
	if update.TechnicianID != nil {
		set["technicianId"] = *update.TechnicianID
	}
	if update.Amount != nil {
		set["amount"] = *update.Amount
	}
	if len(set) > 0 {
		doc["$set"] = set
	}

	var order models.Order
	err := s.coll.FindOneAndUpdate(ctx, filter, doc,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) && update.Payment != nil {
		n, cerr := s.coll.CountDocuments(ctx, bson.M{"_id": id})
		if cerr != nil {
			return nil, errors.Wrap(cerr, "transition order")
		}
		if n > 0 {
			return nil, ErrPaymentRecorded
		}
	}
	if err != nil {
		return nil, wrapFind(err, "transition order")
	}
	return &order, nil
}

func searchFilter(search string, fields ...string) bson.M {
	if search == "" {
		return bson.M{}
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	if len(fields) == 1 {
		return bson.M{fields[0]: pattern}
	}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

var latestState = bson.M{"$arrayElemAt": bson.A{"$status.statusState", -1}}

// pendingFirstPipeline ranks orders whose latest state is Pending ahead of
// the rest, keeps insertion order inside each group, then pages.
func pendingFirstPipeline(filter bson.M, skip, limit int64) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{
			"pendingRank": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{latestState, models.StatePending}}, 0, 1,
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "pendingRank", Value: 1}, {Key: "_id", Value: 1}}}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: skip}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return append(pipeline, bson.D{{Key: "$project", Value: bson.M{"pendingRank": 0}}})
}

func (s *MongoOrderStore) ListPendingFirst(ctx context.Context, q PageQuery) ([]models.Order, int64, error) {
	filter := searchFilter(q.Search, "name", "phone")

	count, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	cur, err := s.coll.Aggregate(ctx, pendingFirstPipeline(filter, q.Skip, q.Limit))
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, errors.Wrap(err, "decode orders")
	}
	return orders, count, nil
}
