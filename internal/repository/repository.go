package repository

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
)

var (
	// ErrNotFound возвращается, когда сущность не найдена
	ErrNotFound = errors.New("not found")
	// ErrConflict нарушение уникальности (email пользователя)
	ErrConflict = errors.New("conflict")
)

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	NameSubstring string
	CategoryID    int64
	MinPrice      *int64
	MaxPrice      *int64
}

// CartLine строка корзины в хранилище; снимок товара собирает сервис
type CartLine struct {
	ID        int64
	UserID    int64
	ProductID int64
	Quantity  int64
}

// UserRecord пользователь вместе с хешем пароля
type UserRecord struct {
	domain.User
	PasswordHash []byte
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// CategoryRepository интерфейс репозитория категорий
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// CartRepository строки корзин всех пользователей
type CartRepository interface {
	Add(ctx context.Context, l *CartLine) error
	GetByID(ctx context.Context, id int64) (*CartLine, error)
	Update(ctx context.Context, l *CartLine) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID int64) ([]CartLine, error)
	ClearUser(ctx context.Context, userID int64) error
}

// OrderRepository интерфейс репозитория заказов
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

// UserRepository пользователи
type UserRepository interface {
	Create(ctx context.Context, u *UserRecord) error
	GetByID(ctx context.Context, id int64) (*UserRecord, error)
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
}

// SessionRepository сессии: sid → id пользователя
type SessionRepository interface {
	Put(ctx context.Context, sid string, userID int64) error
	Get(ctx context.Context, sid string) (int64, error)
	Delete(ctx context.Context, sid string) error
}

// TxManager абстракция транзакции. Для in-memory: глобальная блокировка записи.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
