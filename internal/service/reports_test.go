package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairhub/internal/models"
)

func TestCategoryCounterFollowsNewOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.Reports().CategoryCounts(ctx)
	require.NoError(t, err)

	f.create(t, "fridge")

	after, err := f.svc.Reports().CategoryCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Fridge+1, after.Fridge)
}

func TestBucketCategories(t *testing.T) {
	got := bucketCategories(map[string]int64{
		"youtube-tv": 2,
		"tv":         1,
		"fridge":     3,
		"air-filter": 4,
		"fan":        5,
		"washer":     9,
	})
	assert.Equal(t, CategoryCount{TV: 3, Fridge: 3, AC: 4, Fan: 5}, got)
}

func TestReportsUseCacheUntilInvalidated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "fan")

	pending, err := f.svc.Reports().PendingOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	// A write that bypasses the service is not seen until invalidation.
	f.orders.orders = append(f.orders.orders, models.Order{Status: []models.Status{{StatusState: models.StatePending}}})
	pending, err = f.svc.Reports().PendingOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, pending)

	f.svc.Reports().Invalidate(ctx)
	pending, err = f.svc.Reports().PendingOrders(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, pending)
}

func TestWeeklyAndMonthly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.create(t, "fan")
	f.orders.orders = append(f.orders.orders,
		models.Order{BookingTime: now.AddDate(0, 0, -10), Status: []models.Status{{StatusState: models.StatePending}}},
		models.Order{BookingTime: now.AddDate(-1, 0, 0), Status: []models.Status{{StatusState: models.StatePending}}},
	)
	f.svc.Reports().Invalidate(ctx)

	weekly, err := f.svc.Reports().WeeklySells(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, weekly)

	months, err := f.svc.Reports().SellsInMonth(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, months[1])
	assert.EqualValues(t, 1, months[2])
	assert.EqualValues(t, 0, months[0])
}

func TestTotalProfit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.create(t, "fan")
	_, err := f.svc.CompletePayment(ctx, order.ID.Hex(), models.Payment{Amount: models.NewAmount(decimal.RequireFromString("1250.50"))})
	require.NoError(t, err)

	total, err := f.svc.Reports().TotalProfit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1250.5", total.String())
}

// invalidatingOrders calls during before answering TotalRevenue, standing in
// for an order write that lands while the report is being computed.
type invalidatingOrders struct {
	*memOrders
	during func()
}

func (o *invalidatingOrders) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	total, err := o.memOrders.TotalRevenue(ctx)
	o.during()
	return total, err
}

func TestReportLoadOverlappingWriteIsNotCached(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	orders := &invalidatingOrders{memOrders: &memOrders{}}
	reports := NewReports(orders, c, time.Minute)
	orders.during = func() { reports.Invalidate(ctx) }

	_, err := reports.TotalProfit(ctx)
	require.NoError(t, err)
	_, stored := c.values[reportsNamespace+":"+keyTotalProfit]
	assert.False(t, stored)

	orders.during = func() {}
	_, err = reports.TotalProfit(ctx)
	require.NoError(t, err)
	_, stored = c.values[reportsNamespace+":"+keyTotalProfit]
	assert.True(t, stored)
}
