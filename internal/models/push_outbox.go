package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxDead    = "dead"
)

// PushMessage is the provider-neutral push payload.
type PushMessage struct {
	To    string `bson:"to" json:"to"`
	Title string `bson:"title" json:"title"`
	Body  string `bson:"body" json:"body"`
}

// PushOutboxEntry is a push that failed and waits for a retry.
type PushOutboxEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message     PushMessage        `bson:"message" json:"message"`
	State       string             `bson:"state" json:"state"`
	Attempts    int                `bson:"attempts" json:"attempts"`
	LastError   string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	NextAttempt time.Time          `bson:"nextAttempt" json:"nextAttempt"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
