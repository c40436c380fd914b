package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultAddressParent is the root region listed when no parent id is given.
const DefaultAddressParent = "R184640"

// Address is a node of the hierarchical location catalog.
type Address struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	NodeID      string             `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameLocal   string             `bson:"nameLocal" json:"nameLocal"`
	ParentID    string             `bson:"parentId" json:"parentId"`
	DisplayName string             `bson:"displayName" json:"displayName"`
}
