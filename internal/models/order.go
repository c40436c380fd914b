package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lifecycle state labels. The state of an order is the label of its last status.
const (
	StatePending         = "Pending"
	StateAccepted        = "Accepted"
	StateAssigned        = "Assigned"
	StateRepaired        = "Repaired"
	StatePaymentComplete = "Payment Complete"

	PaymentCompleteDetails = "Your payment has been complete"
)

// Status is one append-only lifecycle record of an order.
type Status struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	StatusDetails string             `bson:"statusDetails" json:"statusDetails"`
	StatusState   string             `bson:"statusState" json:"statusState"`
	Time          time.Time          `bson:"time" json:"time"`
}

func NewStatus(details, state string, at time.Time) Status {
	return Status{
		ID:            primitive.NewObjectID(),
		StatusDetails: details,
		StatusState:   state,
		Time:          at,
	}
}

// Payment records one gateway-confirmed transaction.
type Payment struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	TranID     string             `bson:"tran_id" json:"tran_id"`
	Amount     Amount             `bson:"amount" json:"amount"`
	CardType   string             `bson:"card_type" json:"card_type"`
	BankTranID string             `bson:"bank_tran_id" json:"bank_tran_id"`
	CardIssuer string             `bson:"card_issuer" json:"card_issuer"`
	TranDate   time.Time          `bson:"tran_date" json:"tran_date"`
}

// Order defines the persisted repair order document.
type Order struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name         string              `bson:"name" json:"name"`
	Phone        string              `bson:"phone" json:"phone"`
	Address      string              `bson:"address" json:"address"`
	BookingTime  time.Time           `bson:"bookingTime" json:"bookingTime"`
	ArrivalDate  time.Time           `bson:"arrivalDate" json:"arrivalDate"`
	ArrivalTime  time.Time           `bson:"arrivalTime" json:"arrivalTime"`
	Category     string              `bson:"category" json:"category"`
	CategoryType string              `bson:"categoryType" json:"categoryType"`
	Brand        string              `bson:"brand" json:"brand"`
	Model        string              `bson:"model" json:"model"`
	Problem      string              `bson:"problem" json:"problem"`
	Note         string              `bson:"note,omitempty" json:"note,omitempty"`
	TechnicianID *primitive.ObjectID `bson:"technicianId,omitempty" json:"technicianId,omitempty"`
	UserID       primitive.ObjectID  `bson:"userId" json:"userId"`
	Amount       *float64            `bson:"amount,omitempty" json:"amount,omitempty"`
	Status       []Status            `bson:"status" json:"status"`
	Payment      []Payment           `bson:"payment" json:"payment"`
}

// CurrentStatus returns the last status entry. Orders always carry at least one.
func (o Order) CurrentStatus() (Status, bool) {
	if len(o.Status) == 0 {
		return Status{}, false
	}
	return o.Status[len(o.Status)-1], true
}

func (o Order) CurrentState() string {
	s, _ := o.CurrentStatus()
	return s.StatusState
}

func (o Order) IsPending() bool {
	return o.CurrentState() == StatePending
}

// HasPayment reports whether a payment with the gateway transaction id is recorded.
func (o Order) HasPayment(tranID string) bool {
	for _, p := range o.Payment {
		if p.TranID == tranID {
			return true
		}
	}
	return false
}

// ListedOrder is an order decorated with its page-relative display number.
type ListedOrder struct {
	Order     `bson:",inline"`
	DisplayID int64 `bson:"-" json:"id"`
}
