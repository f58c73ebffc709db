package apiclient_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apiclient"
	"storefront/internal/domain"
	httpapi "storefront/internal/http"
	"storefront/internal/logging"
	"storefront/internal/service"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := httpapi.NewMemoryServices(bcrypt.MinCost)
	require.NoError(t, service.Seed(context.Background(), svc.Categories, svc.Products, svc.Auth))
	ts := httptest.NewServer(httpapi.NewServer(svc, logging.Discard(), t.TempDir()).Engine())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, ts *httptest.Server) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(ts.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := apiclient.New("localhost:3000")
	assert.Error(t, err)
	_, err = apiclient.New("/api")
	assert.Error(t, err)
}

func TestWithHTTPClient_LeavesCallerUntouched(t *testing.T) {
	ctx := context.Background()
	ts := newServer(t)
	shared := &http.Client{}

	c, err := apiclient.New(ts.URL, apiclient.WithHTTPClient(shared), apiclient.WithTimeout(time.Second))
	require.NoError(t, err)
	_, err = c.Login(ctx, service.SeedCustomer.Email, service.SeedCustomer.Password)
	require.NoError(t, err)

	assert.Nil(t, shared.Jar)
	assert.Zero(t, shared.Timeout)
	_, err = c.Me(ctx)
	require.NoError(t, err, "client keeps its own session")
}

func TestImageURL(t *testing.T) {
	c, err := apiclient.New("http://shop.local:3000/")
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local:3000/images/a.jpg", c.ImageURL("images/a.jpg"))
	assert.Equal(t, "http://shop.local:3000/images/a.jpg", c.ImageURL("/images/a.jpg"))
	assert.Equal(t, "https://cdn/x.png", c.ImageURL("https://cdn/x.png"))
	assert.Equal(t, "", c.ImageURL(""))
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	ts := newServer(t)
	c := newClient(t, ts)

	_, err := c.Me(ctx)
	require.ErrorIs(t, err, apiclient.ErrNoSession)

	_, err = c.Login(ctx, service.SeedCustomer.Email, "wrong")
	require.Error(t, err)
	assert.True(t, apiclient.IsUnauthorized(err))
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "unauthorized", apiErr.Message)

	u, err := c.Login(ctx, service.SeedCustomer.Email, service.SeedCustomer.Password)
	require.NoError(t, err)
	assert.Equal(t, service.SeedCustomer.FullName, u.FullName)

	// a fresh client resumes the stored session
	var buf bytes.Buffer
	require.NoError(t, c.SaveSession(&buf))
	other := newClient(t, ts)
	require.NoError(t, other.LoadSession(&buf))
	me, err := other.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)

	require.NoError(t, other.Logout(ctx))
	_, err = c.Me(ctx)
	assert.ErrorIs(t, err, apiclient.ErrNoSession, "server side session is gone")

	_, err = c.Cart(ctx)
	assert.True(t, apiclient.IsUnauthorized(err))
}

func TestCartAndOrderRoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := newServer(t)
	c := newClient(t, ts)
	u, err := c.Login(ctx, service.SeedCustomer.Email, service.SeedCustomer.Password)
	require.NoError(t, err)

	products, err := c.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 4)

	line, err := c.AddToCart(ctx, 1, 2)
	require.NoError(t, err)
	_, err = c.AddToCart(ctx, 2, 1)
	require.NoError(t, err)

	require.NoError(t, c.UpdateCartItem(ctx, line.ID, 3))
	err = c.UpdateCartItem(ctx, 999, 1)
	assert.True(t, apiclient.IsNotFound(err))

	items, err := c.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(3), items[0].Quantity)

	o, err := c.CreateOrder(ctx, apiclient.CreateOrderRequest{
		CustomerName:    "Jane",
		CustomerNumber:  "0812",
		CustomerAddress: "Jl. Merdeka 1, Jakarta, 10110",
		Status:          domain.OrderStatusPending,
		PaymentMethod:   domain.PaymentEWallet,
		Total:           4296000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4296000), o.Total)
	assert.Equal(t, domain.PaymentEWallet, o.PaymentMethod)
	assert.Equal(t, int64(899000), o.Items[0].Price)

	items, err = c.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	mine, err := c.UserOrders(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, o.ID, mine[0].ID)

	// customers cannot touch admin endpoints
	err = c.UpdateOrderStatus(ctx, o.ID, domain.OrderStatusShipped)
	assert.True(t, apiclient.IsUnauthorized(err))

	admin := newClient(t, ts)
	_, err = admin.Login(ctx, service.SeedAdmin.Email, service.SeedAdmin.Password)
	require.NoError(t, err)
	require.NoError(t, admin.UpdateOrderStatus(ctx, o.ID, domain.OrderStatusShipped))
	all, err := admin.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.OrderStatusShipped, all[0].Status)
	require.NoError(t, admin.DeleteOrder(ctx, o.ID))
}

func TestAdminCatalog(t *testing.T) {
	ctx := context.Background()
	ts := newServer(t)
	admin := newClient(t, ts)
	_, err := admin.Login(ctx, service.SeedAdmin.Email, service.SeedAdmin.Password)
	require.NoError(t, err)

	cat, err := admin.CreateCategory(ctx, "Home")
	require.NoError(t, err)
	_, err = admin.CreateCategory(ctx, "home")
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)

	stars := 4.0
	p, err := admin.CreateProduct(ctx, apiclient.ProductForm{
		Name:       "Desk Lamp",
		Price:      150000,
		CategoryID: cat.ID,
		Stars:      &stars,
		ImageName:  "lamp.jpg",
		Image:      strings.NewReader("jpeg"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.Image, "images/"))

	resp, err := http.Get(admin.ImageURL(p.Image))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	up, err := admin.UpdateProduct(ctx, p.ID, apiclient.ProductForm{Name: "Desk Lamp XL", Price: 175000, CategoryID: cat.ID})
	require.NoError(t, err)
	assert.Equal(t, p.Image, up.Image, "image kept when none uploaded")

	got, err := admin.Product(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(175000), got.Price)

	require.NoError(t, admin.DeleteProduct(ctx, p.ID))
	_, err = admin.Product(ctx, p.ID)
	assert.True(t, apiclient.IsNotFound(err))

	cats, err := admin.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 3)
}

func TestBoundaryValidation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":0,"name":"","price":-5}]`))
	}))
	defer ts.Close()
	c, err := apiclient.New(ts.URL)
	require.NoError(t, err)
	_, err = c.Products(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrInvalidPayload)
}
