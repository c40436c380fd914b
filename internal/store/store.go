// Package store persists the marketplace documents in MongoDB. Each store is
// defined by an interface so services and handlers can be tested with fakes.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"repairhub/internal/models"
)

const (
	usersCollection         = "users"
	ordersCollection        = "orders"
	addressesCollection     = "addresses"
	agentsCollection        = "agents"
	techniciansCollection   = "technicians"
	productsCollection      = "products"
	revokedTokensCollection = "revoked_tokens"
	outboxCollection        = "push_outbox"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrPaymentRecorded is returned by OrderStore.Transition when the order
	// already holds a payment with the same gateway transaction id.
	ErrPaymentRecorded = errors.New("payment already recorded")
)

// PageQuery selects a window of a name-filtered, name-sorted listing.
// A zero Limit returns every match.
type PageQuery struct {
	Search string
	Skip   int64
	Limit  int64
}

// ProfileUpdate holds the user-editable profile fields.
type ProfileUpdate struct {
	Name     string
	Phone    string
	Gender   string
	Birthday *time.Time
}

// OrderUpdate holds the scalar fields a lifecycle transition may set next to
// the status it appends. Nil fields are left untouched.
type OrderUpdate struct {
	Problem      *string
	Note         *string
	TechnicianID *primitive.ObjectID
	Amount       *float64
	Payment      *models.Payment
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerified(ctx context.Context, id primitive.ObjectID) error
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
	SetGoogleID(ctx context.Context, id primitive.ObjectID, googleID string) error
	SetPushToken(ctx context.Context, id primitive.ObjectID, token string) error
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)
	SaveAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.UserAddress, defaultID string) error
	AppendNotification(ctx context.Context, id primitive.ObjectID, n models.Notification) error
	RecordOrder(ctx context.Context, id primitive.ObjectID, orderID primitive.ObjectID, n models.Notification) error
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	Transition(ctx context.Context, id primitive.ObjectID, update OrderUpdate, status models.Status) (*models.Order, error)
	ListPendingFirst(ctx context.Context, q PageQuery) ([]models.Order, int64, error)
	OrderReports
}

// OrderReports are the dashboard aggregations, all computed by the database.
type OrderReports interface {
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	CountBookedBetween(ctx context.Context, from, to time.Time) (int64, error)
	MonthlyBookings(ctx context.Context, year int) ([12]int64, error)
	CountLatestStateNot(ctx context.Context, state string) (int64, error)
	CountByCategoryType(ctx context.Context) (map[string]int64, error)
}

type AddressStore interface {
	ListChildren(ctx context.Context, parentID string) ([]models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, id primitive.ObjectID, address models.Address) (*models.Address, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Address, error)
}

type AgentStore interface {
	List(ctx context.Context, q PageQuery) ([]models.Agent, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Agent, error)
	Create(ctx context.Context, agent *models.Agent) error
	Update(ctx context.Context, id primitive.ObjectID, agent models.Agent) (*models.Agent, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Agent, error)
}

type TechnicianStore interface {
	List(ctx context.Context, q PageQuery) ([]models.Technician, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Technician, error)
	Create(ctx context.Context, technician *models.Technician) error
	Update(ctx context.Context, id primitive.ObjectID, technician models.Technician) (*models.Technician, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Technician, error)
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	List(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIconName(ctx context.Context, iconName string) (*models.Product, error)
	AddBrand(ctx context.Context, id primitive.ObjectID, brand models.Brand) (*models.Product, error)
	AddModel(ctx context.Context, id, brandID primitive.ObjectID, model models.Model) (*models.Product, error)
}

type TokenStore interface {
	Revoke(ctx context.Context, token models.RevokedToken) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

type OutboxStore interface {
	Enqueue(ctx context.Context, entry *models.PushOutboxEntry) error
	Due(ctx context.Context, now time.Time, limit int64) ([]models.PushOutboxEntry, error)
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time, dead bool) error
}

// Stores bundles every Mongo-backed store of one database.
type Stores struct {
	Users       *MongoUserStore
	Orders      *MongoOrderStore
	Addresses   *MongoAddressStore
	Agents      *MongoAgentStore
	Technicians *MongoTechnicianStore
	Products    *MongoProductStore
	Tokens      *MongoTokenStore
	Outbox      *MongoOutboxStore
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		Users:       NewUserStore(db),
		Orders:      NewOrderStore(db),
		Addresses:   NewAddressStore(db),
		Agents:      NewAgentStore(db),
		Technicians: NewTechnicianStore(db),
		Products:    NewProductStore(db),
		Tokens:      NewTokenStore(db),
		Outbox:      NewOutboxStore(db),
	}
}

func wrapFind(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return errors.Wrap(err, what)
}

func wrapWrite(err error, what string) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return errors.Wrap(err, what)
}
