package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// OrderService реализует логику заказов: оформление из корзины, смена статуса, удаление
type OrderService struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	tx       repository.TxManager
}

func NewOrderService(products repository.ProductRepository, carts repository.CartRepository, orders repository.OrderRepository, tx repository.TxManager) *OrderService {
	return &OrderService{products: products, carts: carts, orders: orders, tx: tx}
}

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidState = errors.New("invalid state")
)

// OrderInput данные покупателя из формы оформления
type OrderInput struct {
	CustomerName    string
	CustomerNumber  string
	CustomerAddress string
	Status          domain.OrderStatus
	PaymentMethod   domain.PaymentMethod
	Total           int64
}

// CreateFromCart атомарно превращает корзину в заказ: цены строк фиксируются, корзина очищается.
// Строки удалённых товаров отбрасываются так же, как в CartService.List.
// Total клиента сохраняется, если он положителен, иначе считается по строкам.
// Total ниже суммы строк минус наибольшая скидка промокода отклоняется.
func (s *OrderService) CreateFromCart(ctx context.Context, userID int64, in OrderInput) (*domain.Order, error) {
	if userID <= 0 || strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerAddress) == "" || in.Total < 0 {
		return nil, ErrInvalidInput
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return nil, ErrInvalidInput
	}
	// новый заказ всегда начинается с pending
	if in.Status != "" && in.Status != domain.OrderStatusPending {
		return nil, ErrInvalidState
	}

	var created *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		lines, err := s.carts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		o := domain.Order{
			UserID:          userID,
			CustomerName:    in.CustomerName,
			CustomerNumber:  in.CustomerNumber,
			CustomerAddress: in.CustomerAddress,
			Status:          domain.OrderStatusPending,
			PaymentMethod:   in.PaymentMethod,
		}
		for _, l := range lines {
			p, err := s.products.GetByID(ctx, l.ProductID)
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			o.Items = append(o.Items, domain.OrderItem{Quantity: l.Quantity, Price: p.Price, Product: *p})
		}
		if len(o.Items) == 0 {
			return ErrEmptyCart
		}
		items := o.ItemsTotal()
		o.Total = in.Total
		if o.Total == 0 {
			o.Total = items
		}
		if o.Total < items-domain.MaxDiscount(items) {
			return ErrInvalidInput
		}
		if err := s.orders.Create(ctx, &o); err != nil {
			return err
		}
		if err := s.carts.ClearUser(ctx, userID); err != nil {
			return err
		}
		created = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetOrder возвращает заказ по id
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	if userID <= 0 {
		return nil, ErrInvalidInput
	}
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus ставит любой статус из словаря; ограничения переходов решает клиент
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 || !status.Valid() {
		return nil, ErrInvalidInput
	}
	var updated *domain.Order
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		o, err := s.orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		o.Status = status
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.orders.Delete(ctx, id)
}
