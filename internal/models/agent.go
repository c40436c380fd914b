package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Agent is a service-area representative.
type Agent struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string             `bson:"phone" json:"phone"`
	WhatsappNumber string             `bson:"whatsappNumber,omitempty" json:"whatsappNumber,omitempty"`
	Region         string             `bson:"region" json:"region"`
	City           string             `bson:"city" json:"city"`
	Area           string             `bson:"area" json:"area"`
	Location       string             `bson:"location" json:"location"`
}

// AgentSnapshot is the copy of an agent's summary stored on a technician.
// It is taken when the technician is written and is not kept in sync afterwards.
type AgentSnapshot struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	Name   string             `bson:"name" json:"name"`
	Phone  string             `bson:"phone" json:"phone"`
	Region string             `bson:"region" json:"region"`
	City   string             `bson:"city" json:"city"`
}

func (a Agent) Snapshot() AgentSnapshot {
	return AgentSnapshot{
		ID:     a.ID,
		Name:   a.Name,
		Phone:  a.Phone,
		Region: a.Region,
		City:   a.City,
	}
}

// Technician is a field worker linked to an agent.
type Technician struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	Phone          string             `bson:"phone" json:"phone"`
	WhatsappNumber string             `bson:"whatsappNumber,omitempty" json:"whatsappNumber,omitempty"`
	Region         string             `bson:"region" json:"region"`
	City           string             `bson:"city" json:"city"`
	Area           string             `bson:"area" json:"area"`
	Location       string             `bson:"location" json:"location"`
	Agent          AgentSnapshot      `bson:"agent" json:"agent"`
}
