package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Model struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	ModelName string             `bson:"modelName" json:"modelName"`
}

type Brand struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	BrandName string             `bson:"brandName" json:"brandName"`
	Models    []Model            `bson:"models" json:"models,omitempty"`
}

// Product is an appliance category holding its brands and their models.
type Product struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	IconName string             `bson:"iconName" json:"iconName"`
	Brands   []Brand            `bson:"brands" json:"brands,omitempty"`
}

func (p Product) FindBrand(id string) (Brand, bool) {
	for _, b := range p.Brands {
		if b.ID.Hex() == id {
			return b, true
		}
	}
	return Brand{}, false
}

func (b Brand) FindModel(id string) (Model, bool) {
	for _, m := range b.Models {
		if m.ID.Hex() == id {
			return m, true
		}
	}
	return Model{}, false
}
