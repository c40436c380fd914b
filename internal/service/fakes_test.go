package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"repairhub/internal/models"
	"repairhub/internal/store"
)

type memOrders struct {
	mu     sync.Mutex
	orders []models.Order
}

func (m *memOrders) Insert(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrders) find(id primitive.ObjectID) int {
	for i, o := range m.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	o := m.orders[i]
	o.Status = append([]models.Status(nil), o.Status...)
	return &o, nil
}

func (m *memOrders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) Transition(_ context.Context, id primitive.ObjectID, u store.OrderUpdate, status models.Status) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	o := &m.orders[i]
	if u.Payment != nil && o.HasPayment(u.Payment.TranID) {
		return nil, store.ErrPaymentRecorded
	}
	o.Status = append(o.Status, status)
	if u.Payment != nil {
		o.Payment = append(o.Payment, *u.Payment)
	}
	if u.Problem != nil {
		o.Problem = *u.Problem
	}
	if u.Note != nil {
		o.Note = *u.Note
	}
	if u.TechnicianID != nil {
		o.TechnicianID = u.TechnicianID
	}
	if u.Amount != nil {
		o.Amount = u.Amount
	}
	out := *o
	return &out, nil
}

func (m *memOrders) ListPendingFirst(_ context.Context, q store.PageQuery) ([]models.Order, int64, error) {
	var matched []models.Order
	for _, o := range m.orders {
		if q.Search == "" ||
			strings.Contains(strings.ToLower(o.Name), strings.ToLower(q.Search)) ||
			strings.Contains(o.Phone, q.Search) {
			matched = append(matched, o)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].IsPending() && !matched[j].IsPending()
	})
	count := int64(len(matched))
	if q.Skip >= count {
		return []models.Order{}, count, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && int64(len(matched)) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, count, nil
}

func (m *memOrders) TotalRevenue(context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, o := range m.orders {
		for _, p := range o.Payment {
			total = total.Add(p.Amount.Decimal)
		}
	}
	return total, nil
}

func (m *memOrders) CountBookedBetween(_ context.Context, from, to time.Time) (int64, error) {
	var n int64
	for _, o := range m.orders {
		if o.BookingTime.After(from) && !o.BookingTime.After(to) {
			n++
		}
	}
	return n, nil
}

func (m *memOrders) MonthlyBookings(_ context.Context, year int) ([12]int64, error) {
	var out [12]int64
	for _, o := range m.orders {
		if t := o.BookingTime.UTC(); t.Year() == year {
			out[t.Month()-1]++
		}
	}
	return out, nil
}

func (m *memOrders) CountLatestStateNot(_ context.Context, state string) (int64, error) {
	var n int64
	for _, o := range m.orders {
		if o.CurrentState() != state {
			n++
		}
	}
	return n, nil
}

func (m *memOrders) CountByCategoryType(context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, o := range m.orders {
		out[o.CategoryType]++
	}
	return out, nil
}

// memUsers implements only what the order flow touches.
type memUsers struct {
	store.UserStore
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[primitive.ObjectID]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) AppendNotification(_ context.Context, id primitive.ObjectID, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Notifications = append(u.Notifications, n)
	return nil
}

func (m *memUsers) RecordOrder(_ context.Context, id, orderID primitive.ObjectID, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Orders = append(u.Orders, orderID)
	u.Notifications = append(u.Notifications, n)
	return nil
}

type memTechnicians struct {
	store.TechnicianStore
	known map[primitive.ObjectID]bool
}

func (m memTechnicians) FindByID(_ context.Context, id primitive.ObjectID) (*models.Technician, error) {
	if !m.known[id] {
		return nil, store.ErrNotFound
	}
	return &models.Technician{ID: id}, nil
}

type memProducts struct {
	store.ProductStore
	byIcon map[string]models.Product
}

func (m memProducts) FindByIconName(_ context.Context, icon string) (*models.Product, error) {
	p, ok := m.byIcon[icon]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

type pushed struct {
	token, title, body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []pushed
}

func (r *recordingNotifier) Notify(token, title, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, pushed{token, title, body})
}

// mapCache is an in-process cache.Cache keyed by namespace:key.
type mapCache struct {
	values  map[string]any
	deletes int
}

func newMapCache() *mapCache { return &mapCache{values: map[string]any{}} }

func (c *mapCache) Get(_ context.Context, ns, key string, dst interface{}) (bool, error) {
	v, ok := c.values[ns+":"+key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *int64:
		*d = v.(int64)
	case *CategoryCount:
		*d = v.(CategoryCount)
	case *decimal.Decimal:
		*d = v.(decimal.Decimal)
	case *[12]int64:
		*d = v.([12]int64)
	}
	return true, nil
}

func (c *mapCache) Set(_ context.Context, ns, key string, value interface{}, _ time.Duration) error {
	c.values[ns+":"+key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, ns string, keys ...string) error {
	c.deletes++
	for _, k := range keys {
		delete(c.values, ns+":"+k)
	}
	return nil
}
