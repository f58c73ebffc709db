// Package storefront содержит клиентские компоненты витрины и админки:
// каталог, корзину, оформление заказа, управление статусами и проверку сессии.
//
// Ни один компонент не хранит авторитетного состояния: после каждой мутации
// соответствующая коллекция перечитывается с сервера.
package storefront

import (
	"context"
	"errors"

	"storefront/internal/apiclient"
	"storefront/internal/domain"
)

type CatalogAPI interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	AddToCart(ctx context.Context, productID, quantity int64) (*domain.CartItem, error)
}

type CartAPI interface {
	Cart(ctx context.Context) ([]domain.CartItem, error)
	UpdateCartItem(ctx context.Context, id, quantity int64) error
	DeleteCartItem(ctx context.Context, id int64) error
}

type CheckoutAPI interface {
	Cart(ctx context.Context) ([]domain.CartItem, error)
	CreateOrder(ctx context.Context, req apiclient.CreateOrderRequest) (*domain.Order, error)
}

type OrderAPI interface {
	Orders(ctx context.Context) ([]domain.Order, error)
	UserOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error
}

type SessionAPI interface {
	Me(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, req apiclient.RegisterRequest) (*domain.User, error)
	Logout(ctx context.Context) error
}

var _ interface {
	CatalogAPI
	CartAPI
	CheckoutAPI
	OrderAPI
	SessionAPI
} = (*apiclient.Client)(nil)

// Notifier показывает пользователю блокирующее сообщение (alert в браузере)
type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

type silent struct{}

func (silent) Notify(string) {}

var (
	ErrLineNotFound         = errors.New("cart line not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrAddressIncomplete    = errors.New("address is incomplete")
	ErrPaymentRequired      = errors.New("payment method is required")
	ErrTermsNotAccepted     = errors.New("terms must be accepted")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrWrongStep            = errors.New("action not allowed at this checkout step")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrSessionExpired       = errors.New("session expired")
)
