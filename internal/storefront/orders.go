package storefront

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"storefront/internal/domain"
)

// TransitionPolicy решает, допустим ли переход статуса
type TransitionPolicy interface {
	Allow(from, to domain.OrderStatus) bool
}

// AnyTransition любой статус из любого
type AnyTransition struct{}

func (AnyTransition) Allow(_, _ domain.OrderStatus) bool { return true }

// NoReopenTransition delivered и cancelled конечные
type NoReopenTransition struct{}

func (NoReopenTransition) Allow(from, to domain.OrderStatus) bool {
	return from == to || !from.Terminal()
}

// Имена политик переходов
const (
	PolicyAny      = "any"
	PolicyNoReopen = "no-reopen"
)

// PolicyFor политика по имени; неизвестное имя означает AnyTransition
func PolicyFor(name string) TransitionPolicy {
	if name == PolicyNoReopen {
		return NoReopenTransition{}
	}
	return AnyTransition{}
}

type orderScope struct {
	user   bool
	userID int64
}

// OrderStatusManager список заказов и смена статусов.
// Отображаемый статус меняется только после успешного PUT и повторного чтения списка.
type OrderStatusManager struct {
	api    OrderAPI
	log    *slog.Logger
	notify Notifier
	policy TransitionPolicy

	mu     sync.Mutex
	orders []domain.Order
	scope  orderScope
}

func NewOrderStatusManager(api OrderAPI, log *slog.Logger, notify Notifier, policy TransitionPolicy) *OrderStatusManager {
	if notify == nil {
		notify = silent{}
	}
	if policy == nil {
		policy = AnyTransition{}
	}
	return &OrderStatusManager{api: api, log: log, notify: notify, policy: policy}
}

// FetchOrders все заказы (admin)
func (m *OrderStatusManager) FetchOrders(ctx context.Context) error {
	return m.fetch(ctx, orderScope{})
}

// FetchUserOrders заказы одного пользователя ("мои заказы")
func (m *OrderStatusManager) FetchUserOrders(ctx context.Context, userID int64) error {
	return m.fetch(ctx, orderScope{user: true, userID: userID})
}

func (m *OrderStatusManager) fetch(ctx context.Context, scope orderScope) error {
	var (
		list []domain.Order
		err  error
	)
	if scope.user {
		list, err = m.api.UserOrders(ctx, scope.userID)
	} else {
		list, err = m.api.Orders(ctx)
	}
	if err != nil {
		m.log.Error("fetch orders failed", "user_scope", scope.user, "user_id", scope.userID, "err", err)
		return err
	}
	m.mu.Lock()
	m.orders = list
	m.scope = scope
	m.mu.Unlock()
	return nil
}

func (m *OrderStatusManager) Orders() []domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

func (m *OrderStatusManager) Order(id int64) (domain.Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Order{}, false
}

// ChangeStatus сохраняет новый статус и перечитывает список
func (m *OrderStatusManager) ChangeStatus(ctx context.Context, orderID int64, to domain.OrderStatus) error {
	if !to.Valid() {
		return domain.ErrInvalidStatus
	}
	cur, ok := m.Order(orderID)
	if !ok {
		return ErrOrderNotFound
	}
	if !m.policy.Allow(cur.Status, to) {
		m.notify.Notify("Order " + string(cur.Status) + " cannot be changed to " + string(to) + ".")
		return ErrTransitionNotAllowed
	}
	if err := m.api.UpdateOrderStatus(ctx, orderID, to); err != nil {
		m.log.Error("update order status failed", "order_id", orderID, "status", to, "err", err)
		m.notify.Notify("Failed to update order status.")
		return err
	}
	m.log.Info("order status changed", "order_id", orderID, "from", cur.Status, "to", to)

	m.mu.Lock()
	scope := m.scope
	m.mu.Unlock()
	return m.fetch(ctx, scope)
}

// Stats сводка для дашборда
type Stats struct {
	TotalOrders     int
	TotalRevenue    int64
	PendingOrders   int
	DeliveredOrders int
}

func (m *OrderStatusManager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s Stats
	s.TotalOrders = len(m.orders)
	for _, o := range m.orders {
		s.TotalRevenue += o.Total
		switch o.Status {
		case domain.OrderStatusPending:
			s.PendingOrders++
		case domain.OrderStatusDelivered:
			s.DeliveredOrders++
		}
	}
	return s
}

// DaySummary заказы и выручка за календарный день (UTC)
type DaySummary struct {
	Day     string
	Orders  int
	Revenue int64
}

func (m *OrderStatusManager) Daily() []DaySummary {
	m.mu.Lock()
	byDay := make(map[string]*DaySummary)
	for _, o := range m.orders {
		day := o.CreatedAt.UTC().Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &DaySummary{Day: day}
			byDay[day] = d
		}
		d.Orders++
		d.Revenue += o.Total
	}
	m.mu.Unlock()

	out := make([]DaySummary, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
