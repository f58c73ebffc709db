package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/domain"
)

var errBoom = errors.New("boom")

// fakeAPI имитирует удалённый сервер и записывает все вызовы
type fakeAPI struct {
	mu         sync.Mutex
	calls      []string
	products   []domain.Product
	categories []domain.Category
	cart       []domain.CartItem
	orders     []domain.Order
	user       *domain.User
	created    []apiclient.CreateOrderRequest

	failCart   error
	failUpdate error
	failOrders error
	failCreate error
	failStatus error

	// onUpdate позволяет серверу записать не то количество, что прислал клиент
	onUpdate func(id, qty int64) int64
}

func (f *fakeAPI) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) Products(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /api/products")
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeAPI) Categories(context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /api/categories")
	return append([]domain.Category(nil), f.categories...), nil
}

func (f *fakeAPI) AddToCart(_ context.Context, productID, qty int64) (*domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("POST /api/cart product=%d qty=%d", productID, qty)
	for _, p := range f.products {
		if p.ID == productID {
			it := domain.CartItem{ID: int64(len(f.cart) + 1), Product: p, Quantity: qty}
			f.cart = append(f.cart, it)
			return &it, nil
		}
	}
	return nil, &apiclient.APIError{Method: "POST", Path: "/api/cart", StatusCode: 404}
}

func (f *fakeAPI) Cart(context.Context) ([]domain.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /api/cart")
	if f.failCart != nil {
		return nil, f.failCart
	}
	return append([]domain.CartItem(nil), f.cart...), nil
}

func (f *fakeAPI) UpdateCartItem(_ context.Context, id, qty int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PUT /api/cart/%d qty=%d", id, qty)
	if f.failUpdate != nil {
		return f.failUpdate
	}
	if f.onUpdate != nil {
		qty = f.onUpdate(id, qty)
	}
	for i := range f.cart {
		if f.cart[i].ID == id {
			f.cart[i].Quantity = qty
		}
	}
	return nil
}

func (f *fakeAPI) DeleteCartItem(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DELETE /api/cart/%d", id)
	out := f.cart[:0]
	for _, it := range f.cart {
		if it.ID != id {
			out = append(out, it)
		}
	}
	f.cart = out
	return nil
}

func (f *fakeAPI) CreateOrder(_ context.Context, req apiclient.CreateOrderRequest) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("POST /api/order")
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	f.created = append(f.created, req)
	o := domain.Order{
		ID:              int64(len(f.orders) + 1),
		CustomerName:    req.CustomerName,
		CustomerNumber:  req.CustomerNumber,
		CustomerAddress: req.CustomerAddress,
		Status:          req.Status,
		Total:           req.Total,
		CreatedAt:       time.Now().UTC(),
	}
	f.orders = append(f.orders, o)
	return &o, nil
}

func (f *fakeAPI) Orders(context.Context) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /api/order")
	if f.failOrders != nil {
		return nil, f.failOrders
	}
	return append([]domain.Order(nil), f.orders...), nil
}

func (f *fakeAPI) UserOrders(_ context.Context, userID int64) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /api/order/%d", userID)
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeAPI) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PUT /api/order/%d status=%s", id, status)
	if f.failStatus != nil {
		return f.failStatus
	}
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
		}
	}
	return nil
}

func (f *fakeAPI) Me(context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /auth/me")
	if f.user == nil {
		return nil, apiclient.ErrNoSession
	}
	u := *f.user
	return &u, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("POST /auth/login")
	if password != "secret" {
		return nil, &apiclient.APIError{Method: "POST", Path: "/auth/login", StatusCode: 401}
	}
	f.user = &domain.User{ID: 7, FullName: "Jane", Email: email}
	u := *f.user
	return &u, nil
}

func (f *fakeAPI) Register(_ context.Context, req apiclient.RegisterRequest) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("POST /auth/register")
	return &domain.User{ID: 8, FullName: req.FullName, Email: req.Email}, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GET /auth/logout")
	f.user = nil
	return nil
}

// recorder собирает сообщения, показанные пользователю
type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Notify(msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
}

func (r *recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func scenarioCart() []domain.CartItem {
	return []domain.CartItem{
		{ID: 1, Product: domain.Product{ID: 1, Name: "Wireless Headphones", Price: 899000}, Quantity: 2},
		{ID: 2, Product: domain.Product{ID: 2, Name: "Smartwatch Pro", Price: 1299000}, Quantity: 1},
	}
}
