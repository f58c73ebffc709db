package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"storefront/internal/domain"
)

// Products список товаров
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var list []domain.Product
	if err := c.do(ctx, http.MethodGet, "/api/products", nil, &list); err != nil {
		return nil, err
	}
	if err := checkAll(c, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Product(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	if err := c.check(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductForm поля multipart формы создания/изменения товара
type ProductForm struct {
	Name        string
	Price       int64
	CategoryID  int64
	Stars       *float64
	RatingCount int64
	ImageName   string
	Image       io.Reader
}

func (f ProductForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", f.Name},
		{"price", strconv.FormatInt(f.Price, 10)},
		{"categoryId", strconv.FormatInt(f.CategoryID, 10)},
		{"ratingCount", strconv.FormatInt(f.RatingCount, 10)},
	}
	if f.Stars != nil {
		fields = append(fields, [2]string{"stars", strconv.FormatFloat(*f.Stars, 'f', -1, 64)})
	}
	for _, kv := range fields {
		if err := mw.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if f.Image != nil {
		name := f.ImageName
		if name == "" {
			name = "image"
		}
		fw, err := mw.CreateFormFile("image", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, f.Image); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) sendProductForm(ctx context.Context, method, path string, f ProductForm) (*domain.Product, error) {
	body, contentType, err := f.encode()
	if err != nil {
		return nil, fmt.Errorf("encode product form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	var p domain.Product
	if err := c.send(req, &p); err != nil {
		return nil, err
	}
	if err := c.check(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, f ProductForm) (*domain.Product, error) {
	return c.sendProductForm(ctx, http.MethodPost, "/api/products", f)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, f ProductForm) (*domain.Product, error) {
	return c.sendProductForm(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), f)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil)
}

// Cart корзина текущего пользователя
func (c *Client) Cart(ctx context.Context) ([]domain.CartItem, error) {
	var list []domain.CartItem
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &list); err != nil {
		return nil, err
	}
	if err := checkAll(c, list); err != nil {
		return nil, err
	}
	return list, nil
}

type addToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type quantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (c *Client) AddToCart(ctx context.Context, productID, quantity int64) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := c.do(ctx, http.MethodPost, "/api/cart", addToCartRequest{ProductID: productID, Quantity: quantity}, &item); err != nil {
		return nil, err
	}
	if err := c.check(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateCartItem(ctx context.Context, id, quantity int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/cart/%d", id), quantityRequest{Quantity: quantity}, nil)
}

func (c *Client) DeleteCartItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cart/%d", id), nil, nil)
}

// Orders все заказы (admin)
func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	return c.orders(ctx, "/api/order")
}

// UserOrders заказы одного пользователя
func (c *Client) UserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return c.orders(ctx, fmt.Sprintf("/api/order/%d", userID))
}

func (c *Client) orders(ctx context.Context, path string) ([]domain.Order, error) {
	var list []domain.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	if err := checkAll(c, list); err != nil {
		return nil, err
	}
	return list, nil
}

// CreateOrderRequest тело создания заказа из текущей корзины
type CreateOrderRequest struct {
	CustomerName    string               `json:"customerName"`
	CustomerNumber  string               `json:"customerNumber"`
	CustomerAddress string               `json:"customerAddress"`
	Status          domain.OrderStatus   `json:"status"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod,omitempty"`
	Total           int64                `json:"total,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	var o domain.Order
	if err := c.do(ctx, http.MethodPost, "/api/order", req, &o); err != nil {
		return nil, err
	}
	if err := c.check(&o); err != nil {
		return nil, err
	}
	return &o, nil
}

type statusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/order/%d", id), statusRequest{Status: status}, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/order/%d", id), nil, nil)
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var list []domain.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &list); err != nil {
		return nil, err
	}
	if err := checkAll(c, list); err != nil {
		return nil, err
	}
	return list, nil
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	var cat domain.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", categoryRequest{Name: name}, &cat); err != nil {
		return nil, err
	}
	if err := c.check(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}
