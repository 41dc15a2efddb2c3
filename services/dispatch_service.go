package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kendall-kelly/warranty-dispatch-api/cache"
	"github.com/kendall-kelly/warranty-dispatch-api/logger"
	"github.com/kendall-kelly/warranty-dispatch-api/models"
	"github.com/kendall-kelly/warranty-dispatch-api/planning"
	"github.com/kendall-kelly/warranty-dispatch-api/store"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrTechnicianNotFound = errors.New("technician not found")
)

const (
	// orderNumberAttempts bounds the retries when two orders are created in
	// the same millisecond
	orderNumberAttempts = 5
	defaultOrderSort    = "-created_date"
	defaultTechSort     = "name"
)

// DispatchService reads orders and technicians through the snapshot cache and
// writes them through the stores, invalidating the snapshot after each write.
type DispatchService struct {
	orders      store.Store[models.Order]
	technicians store.Store[models.Technician]
	cache       cache.Cache
	nowFunc     func() time.Time
}

var dispatchServiceInstance *DispatchService

// NewDispatchService wires the stores and the cache
func NewDispatchService(orders store.Store[models.Order], technicians store.Store[models.Technician], c cache.Cache) *DispatchService {
	return &DispatchService{
		orders:      orders,
		technicians: technicians,
		cache:       c,
		nowFunc:     time.Now,
	}
}

// InitDispatchService initializes the dispatch service on a database connection
func InitDispatchService(db *gorm.DB, c cache.Cache) *DispatchService {
	dispatchServiceInstance = NewDispatchService(store.NewOrderStore(db), store.NewTechnicianStore(db), c)
	return dispatchServiceInstance
}

// GetDispatchService returns the initialized dispatch service instance
func GetDispatchService() *DispatchService {
	return dispatchServiceInstance
}

// SetDispatchService sets the dispatch service instance (primarily for testing)
func SetDispatchService(service *DispatchService) {
	dispatchServiceInstance = service
}

// Now returns the service clock
func (s *DispatchService) Now() time.Time {
	return s.nowFunc()
}

// SetClock replaces the service clock (primarily for testing)
func (s *DispatchService) SetClock(nowFunc func() time.Time) {
	s.nowFunc = nowFunc
}

// Orders returns every order, archived ones included, newest first
func (s *DispatchService) Orders(ctx context.Context) ([]models.Order, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyOrders, func(ctx context.Context) ([]models.Order, error) {
		return s.orders.List(ctx, defaultOrderSort)
	})
}

// ActiveOrders returns the non-archived orders. The default newest-first
// order is served from the snapshot, any other sort goes to the store.
func (s *DispatchService) ActiveOrders(ctx context.Context, sort string) ([]models.Order, error) {
	if sort != "" && sort != defaultOrderSort {
		return s.orders.Filter(ctx, store.Fields{"archived": false}, sort)
	}

	all, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return selectArchived(all, false), nil
}

// ArchivedOrders returns the archived orders, newest first
func (s *DispatchService) ArchivedOrders(ctx context.Context) ([]models.Order, error) {
	all, err := s.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return selectArchived(all, true), nil
}

// Technicians returns every technician ordered by name
func (s *DispatchService) Technicians(ctx context.Context) ([]models.Technician, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyTechnicians, func(ctx context.Context) ([]models.Technician, error) {
		return s.technicians.List(ctx, defaultTechSort)
	})
}

// Order fetches one order from the store
func (s *DispatchService) Order(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.Get(ctx, id)
	return order, mapNotFound(err, ErrOrderNotFound)
}

// Technician fetches one technician from the store
func (s *DispatchService) Technician(ctx context.Context, id string) (*models.Technician, error) {
	technician, err := s.technicians.Get(ctx, id)
	return technician, mapNotFound(err, ErrTechnicianNotFound)
}

// CreateOrder assigns an order number and persists order. The creation time
// comes from the service clock.
func (s *DispatchService) CreateOrder(ctx context.Context, order *models.Order) error {
	order.AssignedTechnicians = planning.UniqueIDs(order.AssignedTechnicians)
	created := s.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = created
	}

	var err error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = planning.GenerateOrderNumber(created.Add(time.Duration(attempt) * time.Millisecond))
		err = s.orders.Create(ctx, order)
		if !errors.Is(err, store.ErrDuplicate) {
			break
		}
		logger.L().Warn("order number taken, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt+1))
	}

	_, err = cache.SetOnSuccess(ctx, s.cache, order, err, cache.KeyOrders)
	return err
}

// UpdateOrder applies fields to an order. Technician ids are de-duplicated.
func (s *DispatchService) UpdateOrder(ctx context.Context, id string, fields store.Fields) (*models.Order, error) {
	if ids, ok := fields["assigned_technicians"].([]string); ok {
		fields["assigned_technicians"] = datatypes.JSONSlice[string](planning.UniqueIDs(ids))
	}
	order, err := s.orders.Update(ctx, id, fields)
	return cache.SetOnSuccess(ctx, s.cache, order, mapNotFound(err, ErrOrderNotFound), cache.KeyOrders)
}

// CompleteOrder marks an order as completed and archives it in one update
func (s *DispatchService) CompleteOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.UpdateOrder(ctx, id, store.Fields{
		"status":   models.OrderStatusCompleted,
		"archived": true,
	})
}

// DeleteOrder permanently removes an order
func (s *DispatchService) DeleteOrder(ctx context.Context, id string) error {
	_, err := cache.SetOnSuccess(ctx, s.cache, id, mapNotFound(s.orders.Delete(ctx, id), ErrOrderNotFound), cache.KeyOrders)
	return err
}

// ToggleAssignment adds or removes a technician on an order. Adding requires
// the technician to exist; removing a stale id is always allowed.
func (s *DispatchService) ToggleAssignment(ctx context.Context, orderID, technicianID string) (*models.Order, error) {
	order, err := s.Order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !planning.IsAssigned(*order, technicianID) {
		if _, err := s.Technician(ctx, technicianID); err != nil {
			return nil, err
		}
	}

	next := planning.ToggleAssignment(*order, technicianID)
	return s.UpdateOrder(ctx, orderID, store.Fields{
		"assigned_technicians": next.AssignedTechnicians,
	})
}

// CreateTechnician persists a technician
func (s *DispatchService) CreateTechnician(ctx context.Context, technician *models.Technician) error {
	_, err := cache.SetOnSuccess(ctx, s.cache, technician, s.technicians.Create(ctx, technician), cache.KeyTechnicians)
	return err
}

// UpdateTechnician applies fields to a technician
func (s *DispatchService) UpdateTechnician(ctx context.Context, id string, fields store.Fields) (*models.Technician, error) {
	technician, err := s.technicians.Update(ctx, id, fields)
	return cache.SetOnSuccess(ctx, s.cache, technician, mapNotFound(err, ErrTechnicianNotFound), cache.KeyTechnicians)
}

// DeleteTechnician permanently removes a technician. Orders keep referencing
// the id; it simply matches no technician anymore.
func (s *DispatchService) DeleteTechnician(ctx context.Context, id string) error {
	_, err := cache.SetOnSuccess(ctx, s.cache, id, mapNotFound(s.technicians.Delete(ctx, id), ErrTechnicianNotFound), cache.KeyTechnicians)
	return err
}

// TechnicianOrders returns the non-archived orders assigned to a technician
func (s *DispatchService) TechnicianOrders(ctx context.Context, technicianID string) ([]models.Order, error) {
	if _, err := s.Technician(ctx, technicianID); err != nil {
		return nil, err
	}
	orders, err := s.ActiveOrders(ctx, "")
	if err != nil {
		return nil, err
	}
	return planning.OrdersAssignedTo(orders, technicianID), nil
}

// WeekSchedule builds the planning table for the week containing anchor
func (s *DispatchService) WeekSchedule(ctx context.Context, anchor time.Time, weekStart time.Weekday) (planning.WeekSchedule, error) {
	technicians, err := s.Technicians(ctx)
	if err != nil {
		return planning.WeekSchedule{}, err
	}
	orders, err := s.ActiveOrders(ctx, "")
	if err != nil {
		return planning.WeekSchedule{}, err
	}
	return planning.BuildWeekSchedule(anchor, s.nowFunc(), technicians, orders, weekStart), nil
}

// Dashboard summarizes every order and technician
func (s *DispatchService) Dashboard(ctx context.Context) (planning.Summary, error) {
	technicians, err := s.Technicians(ctx)
	if err != nil {
		return planning.Summary{}, err
	}
	orders, err := s.Orders(ctx)
	if err != nil {
		return planning.Summary{}, err
	}
	return planning.Summarize(orders, technicians, s.nowFunc()), nil
}

func selectArchived(orders []models.Order, archived bool) []models.Order {
	out := make([]models.Order, 0, len(orders))
	for _, order := range orders {
		if order.Archived == archived {
			out = append(out, order)
		}
	}
	return out
}

func mapNotFound(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %v", notFound, err)
	}
	return err
}
