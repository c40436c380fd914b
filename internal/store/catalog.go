package store

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"repairhub/internal/models"
)

/* =========================
   ADDRESS CATALOG
========================= */

type MongoAddressStore struct {
	coll *mongo.Collection
}

func NewAddressStore(db *mongo.Database) *MongoAddressStore {
	return &MongoAddressStore{coll: db.Collection(addressesCollection)}
}

func (s *MongoAddressStore) ListChildren(ctx context.Context, parentID string) ([]models.Address, error) {
	cur, err := s.coll.Find(ctx, bson.M{"parentId": parentID},
		options.Find().SetSort(bson.D{{Key: "displayName", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list addresses")
	}
	out := []models.Address{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode addresses")
	}
	return out, nil
}

func (s *MongoAddressStore) Create(ctx context.Context, address *models.Address) error {
	address.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, address); err != nil {
		return wrapWrite(err, "insert address")
	}
	return nil
}

func (s *MongoAddressStore) Update(ctx context.Context, id primitive.ObjectID, address models.Address) (*models.Address, error) {
	var out models.Address
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"id":          address.NodeID,
		"name":        address.Name,
		"nameLocal":   address.NameLocal,
		"parentId":    address.ParentID,
		"displayName": address.DisplayName,
	}}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, wrapFind(err, "update address")
	}
	return &out, nil
}

func (s *MongoAddressStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Address, error) {
	var out models.Address
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, wrapFind(err, "delete address")
	}
	return &out, nil
}

/* =========================
   AGENTS / TECHNICIANS
========================= */

// listByName runs the shared name-filtered, name-sorted page query.
func listByName(ctx context.Context, coll *mongo.Collection, q PageQuery, out interface{}) (int64, error) {
	filter := searchFilter(q.Search, "name")

	count, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "count "+coll.Name())
	}

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if q.Skip > 0 {
		opts.SetSkip(q.Skip)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return 0, errors.Wrap(err, "list "+coll.Name())
	}
	if err := cur.All(ctx, out); err != nil {
		return 0, errors.Wrap(err, "decode "+coll.Name())
	}
	return count, nil
}

type MongoAgentStore struct {
	coll *mongo.Collection
}

func NewAgentStore(db *mongo.Database) *MongoAgentStore {
	return &MongoAgentStore{coll: db.Collection(agentsCollection)}
}

func (s *MongoAgentStore) List(ctx context.Context, q PageQuery) ([]models.Agent, int64, error) {
	out := []models.Agent{}
	count, err := listByName(ctx, s.coll, q, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (s *MongoAgentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Agent, error) {
	var out models.Agent
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, wrapFind(err, "find agent")
	}
	return &out, nil
}

func (s *MongoAgentStore) Create(ctx context.Context, agent *models.Agent) error {
	agent.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, agent); err != nil {
		return wrapWrite(err, "insert agent")
	}
	return nil
}

func (s *MongoAgentStore) Update(ctx context.Context, id primitive.ObjectID, agent models.Agent) (*models.Agent, error) {
	agent.ID = id
	var out models.Agent
	err := s.coll.FindOneAndReplace(ctx, bson.M{"_id": id}, agent,
		options.FindOneAndReplace().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, wrapFind(err, "update agent")
	}
	return &out, nil
}

func (s *MongoAgentStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Agent, error) {
	var out models.Agent
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, wrapFind(err, "delete agent")
	}
	return &out, nil
}

type MongoTechnicianStore struct {
	coll *mongo.Collection
}

func NewTechnicianStore(db *mongo.Database) *MongoTechnicianStore {
	return &MongoTechnicianStore{coll: db.Collection(techniciansCollection)}
}

func (s *MongoTechnicianStore) List(ctx context.Context, q PageQuery) ([]models.Technician, int64, error) {
	out := []models.Technician{}
	count, err := listByName(ctx, s.coll, q, &out)
	if err != nil {
		return nil, 0, err
	}
	return out, count, nil
}

func (s *MongoTechnicianStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Technician, error) {
	var out models.Technician
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, wrapFind(err, "find technician")
	}
	return &out, nil
}

func (s *MongoTechnicianStore) Create(ctx context.Context, technician *models.Technician) error {
	technician.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, technician); err != nil {
		return wrapWrite(err, "insert technician")
	}
	return nil
}

func (s *MongoTechnicianStore) Update(ctx context.Context, id primitive.ObjectID, technician models.Technician) (*models.Technician, error) {
	technician.ID = id
	var out models.Technician
	err := s.coll.FindOneAndReplace(ctx, bson.M{"_id": id}, technician,
		options.FindOneAndReplace().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, wrapFind(err, "update technician")
	}
	return &out, nil
}

func (s *MongoTechnicianStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Technician, error) {
	var out models.Technician
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, wrapFind(err, "delete technician")
	}
	return &out, nil
}
