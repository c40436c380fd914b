// Package service holds the order lifecycle and the dashboard reports.
package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"repairhub/internal/apperr"
	"repairhub/internal/cache"
	"repairhub/internal/metrics"
	"repairhub/internal/models"
	"repairhub/internal/store"
	"repairhub/internal/validation"
)

const (
	MsgInvalidOrderID      = "Invalid Order ID"
	MsgInvalidUserID       = "Invalid User ID"
	MsgInvalidTechnicianID = "Invalid Technician ID"
	MsgOrderNotFound       = "The order with the given ID was not found"
)

// Notifier fires a push without waiting for it.
type Notifier interface {
	Notify(token, title, body string)
}

type OrderDeps struct {
	Orders      store.OrderStore
	Users       store.UserStore
	Technicians store.TechnicianStore
	Products    store.ProductStore
	Tx          store.Transactor
	Cache       cache.Cache
	Notifier    Notifier
	ReportTTL   time.Duration
}

// OrderService drives an order through Pending, Accepted, Assigned,
// Repaired and Payment Complete. Every step appends one Status to the order
// and one Notification to its owner, then pushes to the owner's device.
type OrderService struct {
	orders      store.OrderStore
	users       store.UserStore
	technicians store.TechnicianStore
	products    store.ProductStore
	tx          store.Transactor
	notifier    Notifier
	reports     *Reports
	log         *zap.Logger
	now         func() time.Time
}

func NewOrderService(d OrderDeps) *OrderService {
	if d.Tx == nil {
		d.Tx = store.NoTransaction{}
	}
	if d.Cache == nil {
		d.Cache = cache.Noop{}
	}
	s := &OrderService{
		orders:      d.Orders,
		users:       d.Users,
		technicians: d.Technicians,
		products:    d.Products,
		tx:          d.Tx,
		notifier:    d.Notifier,
		log:         zap.L().Named("orders"),
		now:         time.Now,
	}
	s.reports = NewReports(d.Orders, d.Cache, d.ReportTTL)
	s.reports.now = func() time.Time { return s.now() }
	return s
}

func (s *OrderService) Reports() *Reports {
	return s.reports
}

// Create books a new order for userID with the submitted initial status.
func (s *OrderService) Create(ctx context.Context, userID primitive.ObjectID, req validation.CreateOrderRequest) (*models.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, MsgInvalidUserID)
	}

	now := s.now()
	status := models.NewStatus(req.StatusDetails, req.StatusState, now)
	order := &models.Order{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Phone:        req.Phone,
		Address:      req.Address,
		BookingTime:  now,
		ArrivalDate:  req.ArrivalDate,
		ArrivalTime:  req.ArrivalTime,
		Category:     req.Category,
		CategoryType: req.CategoryType,
		Brand:        req.Brand,
		Model:        req.Model,
		Problem:      req.Problem,
		Note:         req.Note,
		UserID:       user.ID,
		Status:       []models.Status{status},
		Payment:      []models.Payment{},
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.Insert(ctx, order); err != nil {
			return err
		}
		return s.users.RecordOrder(ctx, user.ID, order.ID, models.NewNotification(order.ID, status))
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, "create", user, status)
	return order, nil
}

// Accept appends the accepted status and replaces problem and note when given.
func (s *OrderService) Accept(ctx context.Context, orderID string, req validation.AcceptOrderRequest) (*models.Order, error) {
	var update store.OrderUpdate
	if req.Problem != "" {
		update.Problem = &req.Problem
	}
	if req.Note != "" {
		update.Note = &req.Note
	}
	return s.transition(ctx, "accept", orderID, update, req.StatusFields)
}

// Assign links the order to an existing technician.
func (s *OrderService) Assign(ctx context.Context, orderID string, req validation.AssignOrderRequest) (*models.Order, error) {
	techID, err := primitive.ObjectIDFromHex(req.TechnicianID)
	if err != nil {
		return nil, apperr.BadRequest(MsgInvalidTechnicianID)
	}
	if _, err := s.technicians.FindByID(ctx, techID); err != nil {
		return nil, notFoundAs(err, MsgInvalidTechnicianID)
	}
	return s.transition(ctx, "assign", orderID, store.OrderUpdate{TechnicianID: &techID}, req.StatusFields)
}

// MarkRepaired records the settled amount.
func (s *OrderService) MarkRepaired(ctx context.Context, orderID string, req validation.RepairedOrderRequest) (*models.Order, error) {
	return s.transition(ctx, "repaired", orderID, store.OrderUpdate{Amount: req.Amount}, req.StatusFields)
}

// CompletePayment appends a gateway-confirmed payment together with the
// Payment Complete status. A transaction already on the order is recorded
// once: repeating the call returns the order unchanged, with no new status,
// notification or push.
func (s *OrderService) CompletePayment(ctx context.Context, orderID string, payment models.Payment) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, apperr.BadRequest(MsgInvalidOrderID)
	}
	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, MsgInvalidOrderID)
	}
	if current.HasPayment(payment.TranID) {
		s.log.Info("payment already recorded", zap.String("order", orderID), zap.String("tran_id", payment.TranID))
		return current, nil
	}

	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	fields := validation.StatusFields{
		StatusDetails: models.PaymentCompleteDetails,
		StatusState:   models.StatePaymentComplete,
	}
	order, err := s.transition(ctx, "payment", orderID, store.OrderUpdate{Payment: &payment}, fields)
	if stderrors.Is(err, store.ErrPaymentRecorded) {
		s.log.Info("payment already recorded", zap.String("order", orderID), zap.String("tran_id", payment.TranID))
		order, err = s.orders.FindByID(ctx, id)
		return order, notFoundAs(err, MsgInvalidOrderID)
	}
	return order, err
}

func (s *OrderService) transition(ctx context.Context, name, rawID string, update store.OrderUpdate, fields validation.StatusFields) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.BadRequest(MsgInvalidOrderID)
	}
	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, MsgInvalidOrderID)
	}
	user, err := s.users.FindByID(ctx, current.UserID)
	if err != nil {
		return nil, notFoundAs(err, MsgInvalidUserID)
	}

	status := models.NewStatus(fields.StatusDetails, fields.StatusState, s.now())
	var updated *models.Order
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.orders.Transition(ctx, id, update, status)
		if err != nil {
			return notFoundAs(err, MsgInvalidOrderID)
		}
		return s.users.AppendNotification(ctx, user.ID, models.NewNotification(id, status))
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, name, user, status)
	return updated, nil
}

func (s *OrderService) afterTransition(ctx context.Context, name string, user *models.User, status models.Status) {
	metrics.OrderTransitions.WithLabelValues(name).Inc()
	s.log.Info("order transition",
		zap.String("transition", name),
		zap.String("state", status.StatusState),
		zap.String("user", user.ID.Hex()),
	)
	s.reports.Invalidate(ctx)
	if s.notifier != nil {
		s.notifier.Notify(user.ExpoPushToken, status.StatusState, status.StatusDetails)
	}
}

// List returns one page of orders with pending ones first. Each entry
// carries its position in the full listing as DisplayID.
func (s *OrderService) List(ctx context.Context, search string, pageNumber, pageSize int64) ([]models.ListedOrder, int64, error) {
	skip := (pageNumber - 1) * pageSize
	orders, count, err := s.orders.ListPendingFirst(ctx, store.PageQuery{Search: search, Skip: skip, Limit: pageSize})
	if err != nil {
		return nil, 0, err
	}
	listed := make([]models.ListedOrder, 0, len(orders))
	for i, o := range orders {
		listed = append(listed, models.ListedOrder{Order: o, DisplayID: skip + int64(i) + 1})
	}
	return listed, count, nil
}

// Get returns an order visible to the caller, with brand and model ids
// replaced by their catalog names when they resolve.
func (s *OrderService) Get(ctx context.Context, rawID string, caller primitive.ObjectID, isAdmin bool) (*models.Order, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, apperr.NotFound(MsgOrderNotFound)
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, MsgOrderNotFound, apperr.NotFound)
	}
	if !isAdmin && order.UserID != caller {
		return nil, apperr.NotFound(MsgOrderNotFound)
	}
	s.resolveCatalogNames(ctx, order)
	return order, nil
}

func (s *OrderService) resolveCatalogNames(ctx context.Context, order *models.Order) {
	if s.products == nil {
		return
	}
	product, err := s.products.FindByIconName(ctx, order.CategoryType)
	if err != nil {
		if !stderrors.Is(err, store.ErrNotFound) {
			s.log.Warn("resolve catalog names", zap.String("order", order.ID.Hex()), zap.Error(err))
		}
		return
	}
	brand, ok := product.FindBrand(order.Brand)
	if !ok {
		return
	}
	order.Brand = brand.BrandName
	if model, ok := brand.FindModel(order.Model); ok {
		order.Model = model.ModelName
	}
}

// ListForUser returns the caller's own orders, newest first.
func (s *OrderService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// notFoundAs turns store.ErrNotFound into an application error with message.
// 400 is used unless another constructor is given.
func notFoundAs(err error, message string, ctor ...func(string) *apperr.Error) error {
	if !stderrors.Is(err, store.ErrNotFound) {
		return err
	}
	if len(ctor) > 0 {
		return ctor[0](message)
	}
	return apperr.BadRequest(message)
}
