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

type MongoProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *MongoProductStore {
	return &MongoProductStore{coll: db.Collection(productsCollection)}
}

func (s *MongoProductStore) Create(ctx context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	if product.Brands == nil {
		product.Brands = []models.Brand{}
	}
	if _, err := s.coll.InsertOne(ctx, product); err != nil {
		return wrapWrite(err, "insert product")
	}
	return nil
}

// List returns every product without its brand tree.
func (s *MongoProductStore) List(ctx context.Context) ([]models.Product, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().
		SetProjection(bson.M{"brands": 0}).
		SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return out, nil
}

func (s *MongoProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var out models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, wrapFind(err, "find product")
	}
	return &out, nil
}

func (s *MongoProductStore) FindByIconName(ctx context.Context, iconName string) (*models.Product, error) {
	var out models.Product
	if err := s.coll.FindOne(ctx, bson.M{"iconName": iconName}).Decode(&out); err != nil {
		return nil, wrapFind(err, "find product by icon")
	}
	return &out, nil
}

func (s *MongoProductStore) AddBrand(ctx context.Context, id primitive.ObjectID, brand models.Brand) (*models.Product, error) {
	if brand.Models == nil {
		brand.Models = []models.Model{}
	}
	var out models.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$push": bson.M{"brands": brand}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, wrapFind(err, "add brand")
	}
	return &out, nil
}

func (s *MongoProductStore) AddModel(ctx context.Context, id, brandID primitive.ObjectID, model models.Model) (*models.Product, error) {
	var out models.Product
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "brands._id": brandID},
		bson.M{"$push": bson.M{"brands.$.models": model}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		return nil, wrapFind(err, "add model")
	}
	return &out, nil
}
