package domain

import (
	"errors"
	"strings"
	"time"
)

// Product представляет товар витрины. Цена в минимальных единицах валюты.
type Product struct {
	ID          int64    `json:"id" validate:"required,gt=0"`
	Name        string   `json:"name" validate:"required"`
	Price       int64    `json:"price" validate:"gte=0"`
	Image       string   `json:"image"`
	Stars       *float64 `json:"stars,omitempty" validate:"omitempty,gte=0,lte=5"`
	RatingCount int64    `json:"ratingCount" validate:"gte=0"`
	CategoryID  int64    `json:"categoryId" validate:"gte=0"`
}

// CartItem строка корзины
type CartItem struct {
	ID       int64   `json:"id" validate:"required,gt=0"`
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity" validate:"gte=1"`
}

// LineTotal цена строки
func (c CartItem) LineTotal() int64 { return c.Product.Price * c.Quantity }

// OrderStatus тип статуса заказа
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid order status")

// OrderStatuses словарь статусов в порядке отображения
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ParseOrderStatus принимает значение без учёта регистра
func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Terminal статусы, после которых заказ не меняется при строгой политике
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Badge цвет бейджа статуса
func (s OrderStatus) Badge() string {
	switch s {
	case OrderStatusPending:
		return "yellow"
	case OrderStatusProcessing:
		return "blue"
	case OrderStatusShipped:
		return "purple"
	case OrderStatusDelivered:
		return "green"
	case OrderStatusCancelled:
		return "red"
	default:
		return "gray"
	}
}

// Label текст статуса для покупателя
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Awaiting payment"
	case OrderStatusProcessing:
		return "Processing"
	case OrderStatusShipped:
		return "Shipped"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// OrderItem позиция в заказе. Price фиксируется при создании заказа.
type OrderItem struct {
	ID       int64   `json:"id"`
	Quantity int64   `json:"quantity" validate:"gte=1"`
	Price    int64   `json:"price" validate:"gte=0"`
	Product  Product `json:"product"`
}

// Order сущность заказа
type Order struct {
	ID              int64         `json:"id" validate:"required,gt=0"`
	UserID          int64         `json:"userId,omitempty"`
	CustomerName    string        `json:"customerName"`
	CustomerNumber  string        `json:"customerNumber"`
	CustomerAddress string        `json:"customerAddress"`
	Status          OrderStatus   `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	PaymentMethod   PaymentMethod `json:"paymentMethod,omitempty"`
	Total           int64         `json:"total" validate:"gte=0"`
	CreatedAt       time.Time     `json:"createdAt"`
	Items           []OrderItem   `json:"order_items" validate:"dive"`
}

// ItemsTotal сумма по зафиксированным ценам позиций
func (o Order) ItemsTotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.Price * it.Quantity
	}
	return sum
}

// Category категория товаров
type Category struct {
	ID   int64  `json:"id" validate:"required,gt=0"`
	Name string `json:"name" validate:"required"`
}

const RoleAdmin = "admin"

// User пользователь сессии
type User struct {
	ID       int64  `json:"id" validate:"required,gt=0"`
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// PaymentMethod способ оплаты
type PaymentMethod string

const (
	PaymentCredit  PaymentMethod = "credit"
	PaymentBank    PaymentMethod = "bank"
	PaymentEWallet PaymentMethod = "ewallet"
	PaymentCOD     PaymentMethod = "cod"
)

var ErrInvalidPayment = errors.New("invalid payment method")

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentCredit, PaymentBank, PaymentEWallet, PaymentCOD}
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCredit, PaymentBank, PaymentEWallet, PaymentCOD:
		return true
	}
	return false
}

// DeliveryMethod способ доставки строки корзины
type DeliveryMethod string

const (
	DeliveryStandard DeliveryMethod = "standard"
	DeliveryExpress  DeliveryMethod = "express"
	DeliverySameDay  DeliveryMethod = "same-day"
)

var ErrInvalidDelivery = errors.New("invalid delivery method")

// Fee стоимость доставки; неизвестный способ считается стандартным
func (d DeliveryMethod) Fee() int64 {
	switch d {
	case DeliveryExpress:
		return 9900
	case DeliverySameDay:
		return 19900
	default:
		return 0
	}
}

func (d DeliveryMethod) Valid() bool {
	switch d {
	case DeliveryStandard, DeliveryExpress, DeliverySameDay:
		return true
	}
	return false
}
