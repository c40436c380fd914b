package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"repairhub/internal/apperr"
	"repairhub/internal/models"
	"repairhub/internal/validation"
)

type fixture struct {
	svc      *OrderService
	orders   *memOrders
	users    *memUsers
	notifier *recordingNotifier
	cache    *mapCache
	user     *models.User
	techID   primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	user := &models.User{ID: primitive.NewObjectID(), Name: "Rahim", ExpoPushToken: "ExponentPushToken[abc]"}
	techID := primitive.NewObjectID()
	f := &fixture{
		orders:   &memOrders{},
		users:    newMemUsers(user),
		notifier: &recordingNotifier{},
		cache:    newMapCache(),
		user:     user,
		techID:   techID,
	}
	f.svc = NewOrderService(OrderDeps{
		Orders:      f.orders,
		Users:       f.users,
		Technicians: memTechnicians{known: map[primitive.ObjectID]bool{techID: true}},
		Tx:          nil,
		Cache:       f.cache,
		Notifier:    f.notifier,
		ReportTTL:   time.Minute,
	})
	return f
}

func createRequest(category string) validation.CreateOrderRequest {
	return validation.CreateOrderRequest{
		Name:         "Rahim",
		Phone:        "01700000000",
		Address:      "House 1, Gulshan",
		ArrivalDate:  time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		ArrivalTime:  time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC),
		Category:     "Refrigerator",
		CategoryType: category,
		Brand:        "brand",
		Model:        "model",
		Problem:      "not cooling",
		Note:         "call first",
		StatusFields: validation.StatusFields{StatusDetails: "Your order is pending", StatusState: models.StatePending},
	}
}

func (f *fixture) create(t *testing.T, category string) *models.Order {
	t.Helper()
	order, err := f.svc.Create(context.Background(), f.user.ID, createRequest(category))
	require.NoError(t, err)
	return order
}

func TestCreateStartsWithOneStatus(t *testing.T) {
	f := newFixture(t)
	order := f.create(t, "fridge")

	require.Len(t, order.Status, 1)
	assert.Equal(t, models.StatePending, order.CurrentState())
	assert.Equal(t, f.user.ID, order.UserID)

	u := f.users.users[f.user.ID]
	assert.Equal(t, []primitive.ObjectID{order.ID}, u.Orders)
	require.Len(t, u.Notifications, 1)
	assert.Equal(t, order.ID, u.Notifications[0].OrderID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, pushed{"ExponentPushToken[abc]", models.StatePending, "Your order is pending"}, f.notifier.sent[0])
}

func TestCreateUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), createRequest("fan"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, http.StatusBadRequest))
	assert.Equal(t, MsgInvalidUserID, apperr.From(err).Message())
}

func TestTransitionsAppendOneStatusAndNotification(t *testing.T) {
	f := newFixture(t)
	order := f.create(t, "fridge")
	ctx := context.Background()
	id := order.ID.Hex()
	amount := 1500.0

	steps := []struct {
		name string
		run  func() (*models.Order, error)
	}{
		{"accept", func() (*models.Order, error) {
			return f.svc.Accept(ctx, id, validation.AcceptOrderRequest{
				Problem:      "compressor",
				StatusFields: validation.StatusFields{StatusDetails: "Accepted", StatusState: models.StateAccepted},
			})
		}},
		{"assign", func() (*models.Order, error) {
			return f.svc.Assign(ctx, id, validation.AssignOrderRequest{
				TechnicianID: f.techID.Hex(),
				StatusFields: validation.StatusFields{StatusDetails: "Assigned", StatusState: models.StateAssigned},
			})
		}},
		{"repaired", func() (*models.Order, error) {
			return f.svc.MarkRepaired(ctx, id, validation.RepairedOrderRequest{
				Amount:       &amount,
				StatusFields: validation.StatusFields{StatusDetails: "Repaired", StatusState: models.StateRepaired},
			})
		}},
		{"payment", func() (*models.Order, error) {
			return f.svc.CompletePayment(ctx, id, models.Payment{TranID: "T1", Amount: models.NewAmount(decimal.NewFromInt(1500))})
		}},
	}

	prev := order.Status
	for i, step := range steps {
		updated, err := step.run()
		require.NoError(t, err, step.name)
		require.Len(t, updated.Status, len(prev)+1, step.name)
		assert.Equal(t, prev, updated.Status[:len(prev)], "%s rewrote earlier statuses", step.name)
		assert.Len(t, f.users.users[f.user.ID].Notifications, i+2, step.name)
		prev = updated.Status
	}

	final, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePaymentComplete, final.CurrentState())
	assert.Equal(t, "compressor", final.Problem)
	assert.Equal(t, "call first", final.Note)
	assert.Equal(t, f.techID, *final.TechnicianID)
	assert.Equal(t, 1500.0, *final.Amount)
	require.Len(t, final.Payment, 1)
	assert.False(t, final.Payment[0].ID.IsZero())
	assert.Len(t, f.notifier.sent, 5)
}

func TestTransitionErrors(t *testing.T) {
	f := newFixture(t)
	order := f.create(t, "fan")
	ctx := context.Background()
	fields := validation.StatusFields{StatusDetails: "x", StatusState: "y"}

	_, err := f.svc.Accept(ctx, "not-an-id", validation.AcceptOrderRequest{StatusFields: fields})
	assert.Equal(t, MsgInvalidOrderID, apperr.From(err).Message())

	_, err = f.svc.Accept(ctx, primitive.NewObjectID().Hex(), validation.AcceptOrderRequest{StatusFields: fields})
	assert.Equal(t, MsgInvalidOrderID, apperr.From(err).Message())

	_, err = f.svc.Assign(ctx, order.ID.Hex(), validation.AssignOrderRequest{TechnicianID: primitive.NewObjectID().Hex(), StatusFields: fields})
	assert.Equal(t, MsgInvalidTechnicianID, apperr.From(err).Message())

	stored, _ := f.orders.FindByID(ctx, order.ID)
	assert.Len(t, stored.Status, 1)
}

func TestListPendingFirstWithDisplayIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, f.create(t, "tv").ID.Hex())
	}
	fields := validation.StatusFields{StatusDetails: "Accepted", StatusState: models.StateAccepted}
	for _, id := range ids[:2] {
		_, err := f.svc.Accept(ctx, id, validation.AcceptOrderRequest{StatusFields: fields})
		require.NoError(t, err)
	}

	page1, count, err := f.svc.List(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)
	require.Len(t, page1, 2)
	assert.EqualValues(t, 1, page1[0].DisplayID)
	assert.EqualValues(t, 2, page1[1].DisplayID)

	page2, _, err := f.svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.EqualValues(t, 3, page2[0].DisplayID)
	assert.True(t, page2[0].IsPending())
	assert.False(t, page2[1].IsPending())

	all, _, err := f.svc.List(ctx, "", 1, 10)
	require.NoError(t, err)
	seenOther := false
	for _, o := range all {
		if !o.IsPending() {
			seenOther = true
			continue
		}
		assert.False(t, seenOther, "pending order listed after a non-pending one")
	}
}

func TestListNeverExceedsPageSize(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 7; i++ {
		f.create(t, "fan")
	}
	for size := int64(1); size <= 8; size++ {
		page, _, err := f.svc.List(context.Background(), "", 1, size)
		require.NoError(t, err)
		assert.LessOrEqual(t, int64(len(page)), size, fmt.Sprintf("pageSize %d", size))
	}
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	order := f.create(t, "fridge")
	ctx := context.Background()

	got, err := f.svc.Get(ctx, order.ID.Hex(), f.user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.Get(ctx, order.ID.Hex(), primitive.NewObjectID(), false)
	assert.True(t, apperr.Is(err, http.StatusNotFound))

	_, err = f.svc.Get(ctx, order.ID.Hex(), primitive.NewObjectID(), true)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, "zzz", f.user.ID, true)
	assert.True(t, apperr.Is(err, http.StatusNotFound))
}

func TestGetResolvesCatalogNames(t *testing.T) {
	f := newFixture(t)
	brandID, modelID := primitive.NewObjectID(), primitive.NewObjectID()
	f.svc.products = memProducts{byIcon: map[string]models.Product{
		"fridge": {
			IconName: "fridge",
			Brands: []models.Brand{{
				ID:        brandID,
				BrandName: "Walton",
				Models:    []models.Model{{ID: modelID, ModelName: "WFC-3F5"}},
			}},
		},
	}}
	req := createRequest("fridge")
	req.Brand, req.Model = brandID.Hex(), modelID.Hex()
	order, err := f.svc.Create(context.Background(), f.user.ID, req)
	require.NoError(t, err)

	got, err := f.svc.Get(context.Background(), order.ID.Hex(), f.user.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Walton", got.Brand)
	assert.Equal(t, "WFC-3F5", got.Model)
}

func TestCompletePaymentRecordsTransactionOnce(t *testing.T) {
	f := newFixture(t)
	order := f.create(t, "fridge")
	ctx := context.Background()
	payment := models.Payment{TranID: "T1", Amount: models.NewAmount(decimal.NewFromInt(500))}

	first, err := f.svc.CompletePayment(ctx, order.ID.Hex(), payment)
	require.NoError(t, err)
	require.Len(t, first.Payment, 1)

	again, err := f.svc.CompletePayment(ctx, order.ID.Hex(), payment)
	require.NoError(t, err)
	assert.Equal(t, models.StatePaymentComplete, again.CurrentState())

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payment, 1)
	assert.Len(t, stored.Status, 2)
	assert.Len(t, f.users.users[f.user.ID].Notifications, 2)
	assert.Len(t, f.notifier.sent, 2)

	revenue, err := f.svc.Reports().TotalProfit(ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(revenue), revenue.String())
}

// staleOrders hides recorded payments from reads, as a concurrent callback
// that read the order before the first one wrote would see it.
type staleOrders struct {
	*memOrders
}

func (s staleOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	o, err := s.memOrders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Payment = nil
	return o, nil
}

func TestCompletePaymentConcurrentDuplicateIsIgnored(t *testing.T) {
	f := newFixture(t)
	order := f.create(t, "fan")
	ctx := context.Background()
	payment := models.Payment{TranID: "T2", Amount: models.NewAmount(decimal.NewFromInt(300))}

	_, err := f.svc.CompletePayment(ctx, order.ID.Hex(), payment)
	require.NoError(t, err)

	racing := NewOrderService(OrderDeps{
		Orders:   staleOrders{f.orders},
		Users:    f.users,
		Notifier: f.notifier,
	})
	_, err = racing.CompletePayment(ctx, order.ID.Hex(), payment)
	require.NoError(t, err)

	stored, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Payment, 1)
	assert.Len(t, stored.Status, 2)
	assert.Len(t, f.notifier.sent, 2)
}
