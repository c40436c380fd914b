package service

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"repairhub/internal/cache"
	"repairhub/internal/models"
	"repairhub/internal/store"
)

const reportsNamespace = "reports"

const (
	keyTotalProfit   = "totalProfit"
	keyWeeklySells   = "weeklySells"
	keySellsInMonth  = "sellsInMonth"
	keyPendingOrders = "pendingOrder"
	keyCategoryCount = "countOrderCategory"
)

const week = 7 * 24 * time.Hour

// CategoryCount is the per-appliance order counter of the dashboard.
type CategoryCount struct {
	TV     int64 `json:"tv"`
	Fridge int64 `json:"fridge"`
	AC     int64 `json:"ac"`
	Fan    int64 `json:"fan"`
}

// categoryBuckets maps catalog icon names onto dashboard buckets.
var categoryBuckets = map[string]func(*CategoryCount) *int64{
	"youtube-tv": func(c *CategoryCount) *int64 { return &c.TV },
	"tv":         func(c *CategoryCount) *int64 { return &c.TV },
	"fridge":     func(c *CategoryCount) *int64 { return &c.Fridge },
	"air-filter": func(c *CategoryCount) *int64 { return &c.AC },
	"ac":         func(c *CategoryCount) *int64 { return &c.AC },
	"fan":        func(c *CategoryCount) *int64 { return &c.Fan },
}

func bucketCategories(counts map[string]int64) CategoryCount {
	var out CategoryCount
	for name, n := range counts {
		if field, ok := categoryBuckets[name]; ok {
			*field(&out) += n
		}
	}
	return out
}

// Reports computes the dashboard figures in the database and keeps them in
// the cache for ttl. Any order write calls Invalidate. A figure whose load
// overlapped an Invalidate of this process is returned but not cached.
type Reports struct {
	orders store.OrderReports
	cache  cache.Cache
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time

	generation atomic.Uint64
}

func NewReports(orders store.OrderReports, c cache.Cache, ttl time.Duration) *Reports {
	if c == nil {
		c = cache.Noop{}
	}
	return &Reports{
		orders: orders,
		cache:  c,
		ttl:    ttl,
		log:    zap.L().Named("reports"),
		now:    time.Now,
	}
}

func cached[T any](ctx context.Context, r *Reports, key string, load func() (T, error)) (T, error) {
	var value T
	if r.ttl > 0 {
		hit, err := r.cache.Get(ctx, reportsNamespace, key, &value)
		if err != nil {
			r.log.Warn("report cache read", zap.String("key", key), zap.Error(err))
		} else if hit {
			return value, nil
		}
	}

	gen := r.generation.Load()
	value, err := load()
	if err != nil {
		return value, err
	}
	if r.ttl > 0 && r.generation.Load() == gen {
		if err := r.cache.Set(ctx, reportsNamespace, key, value, r.ttl); err != nil {
			r.log.Warn("report cache write", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

// TotalProfit sums every recorded payment amount.
func (r *Reports) TotalProfit(ctx context.Context) (decimal.Decimal, error) {
	return cached(ctx, r, keyTotalProfit, func() (decimal.Decimal, error) {
		return r.orders.TotalRevenue(ctx)
	})
}

// WeeklySells counts orders booked during the last seven days.
func (r *Reports) WeeklySells(ctx context.Context) (int64, error) {
	return cached(ctx, r, keyWeeklySells, func() (int64, error) {
		now := r.now()
		return r.orders.CountBookedBetween(ctx, now.Add(-week), now)
	})
}

// SellsInMonth is the booking histogram of the current year, January first.
func (r *Reports) SellsInMonth(ctx context.Context) ([12]int64, error) {
	year := r.now().UTC().Year()
	return cached(ctx, r, monthKey(year), func() ([12]int64, error) {
		return r.orders.MonthlyBookings(ctx, year)
	})
}

// PendingOrders counts orders whose latest state is not Payment Complete.
func (r *Reports) PendingOrders(ctx context.Context) (int64, error) {
	return cached(ctx, r, keyPendingOrders, func() (int64, error) {
		return r.orders.CountLatestStateNot(ctx, models.StatePaymentComplete)
	})
}

func (r *Reports) CategoryCounts(ctx context.Context) (CategoryCount, error) {
	return cached(ctx, r, keyCategoryCount, func() (CategoryCount, error) {
		counts, err := r.orders.CountByCategoryType(ctx)
		if err != nil {
			return CategoryCount{}, err
		}
		return bucketCategories(counts), nil
	})
}

// Invalidate drops every cached report.
func (r *Reports) Invalidate(ctx context.Context) {
	r.generation.Add(1)
	if r.ttl <= 0 {
		return
	}
	keys := []string{keyTotalProfit, keyWeeklySells, monthKey(r.now().UTC().Year()), keyPendingOrders, keyCategoryCount}
	if err := r.cache.Delete(ctx, reportsNamespace, keys...); err != nil {
		r.log.Warn("report cache invalidate", zap.Error(err))
	}
}

func monthKey(year int) string {
	return keySellsInMonth + ":" + strconv.Itoa(year)
}
