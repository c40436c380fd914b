package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// UserAddress is a shipping/service address owned by a single user.
type UserAddress struct {
	ID      string `bson:"_id" json:"_id"`
	Name    string `bson:"name" json:"name"`
	Phone   string `bson:"phone" json:"phone"`
	Address string `bson:"address" json:"address"`
	Area    string `bson:"area" json:"area"`
	City    string `bson:"city" json:"city"`
	Region  string `bson:"region" json:"region"`
	Office  bool   `bson:"office" json:"office"`
}

// NewAddressID returns a locally unique id for an embedded address.
func NewAddressID() string {
	return uuid.NewString()
}

// Notification echoes an order status change into the owner's inbox.
type Notification struct {
	ID            primitive.ObjectID `bson:"_id" json:"_id"`
	OrderID       primitive.ObjectID `bson:"orderId" json:"orderId"`
	StatusDetails string             `bson:"statusDetails" json:"statusDetails"`
	StatusState   string             `bson:"statusState" json:"statusState"`
	Time          time.Time          `bson:"time" json:"time"`
}

func NewNotification(orderID primitive.ObjectID, status Status) Notification {
	return Notification{
		ID:            primitive.NewObjectID(),
		OrderID:       orderID,
		StatusDetails: status.StatusDetails,
		StatusState:   status.StatusState,
		Time:          status.Time,
	}
}

// User represents the application user account.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name" json:"name"`
	Email          string               `bson:"email" json:"email"`
	PasswordHash   string               `bson:"password,omitempty" json:"-"`
	GoogleID       string               `bson:"googleId,omitempty" json:"googleId,omitempty"`
	IsAdmin        bool                 `bson:"isAdmin" json:"isAdmin"`
	Verified       bool                 `bson:"verified" json:"verified"`
	ExpoPushToken  string               `bson:"expoPushToken,omitempty" json:"expoPushToken,omitempty"`
	Phone          string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Gender         string               `bson:"gender,omitempty" json:"gender,omitempty"`
	Birthday       *time.Time           `bson:"birthday,omitempty" json:"birthday,omitempty"`
	Addresses      []UserAddress        `bson:"addresses" json:"addresses"`
	DefaultAddress string               `bson:"defaultAddress,omitempty" json:"defaultAddress,omitempty"`
	Notifications  []Notification       `bson:"notifications" json:"notifications"`
	Orders         []primitive.ObjectID `bson:"orders" json:"orders"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasPassword is false for accounts created through federated login.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}

// FindAddress returns the index of the embedded address with the given id, or -1.
func (u User) FindAddress(id string) int {
	for i, addr := range u.Addresses {
		if addr.ID == id {
			return i
		}
	}
	return -1
}

// DefaultUserAddress resolves the default address, falling back to the first one.
func (u User) DefaultUserAddress() (UserAddress, bool) {
	if i := u.FindAddress(u.DefaultAddress); i >= 0 {
		return u.Addresses[i], true
	}
	if len(u.Addresses) > 0 {
		return u.Addresses[0], true
	}
	return UserAddress{}, false
}

// AddAddress appends addr. The first address always becomes the default.
func (u *User) AddAddress(addr UserAddress, makeDefault bool) {
	u.Addresses = append(u.Addresses, addr)
	if makeDefault || len(u.Addresses) == 1 || u.FindAddress(u.DefaultAddress) < 0 {
		u.DefaultAddress = addr.ID
	}
}

// RemoveAddress deletes the address with id. When it was the default, the
// first remaining address is promoted.
func (u *User) RemoveAddress(id string) bool {
	i := u.FindAddress(id)
	if i < 0 {
		return false
	}
	u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
	if u.DefaultAddress == id {
		u.DefaultAddress = ""
		if len(u.Addresses) > 0 {
			u.DefaultAddress = u.Addresses[0].ID
		}
	}
	return true
}
