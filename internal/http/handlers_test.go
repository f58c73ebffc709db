package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

func setupServer(t *testing.T) *Server {
	t.Helper()
	svc := NewMemoryServices(bcrypt.MinCost)
	if err := service.Seed(context.Background(), svc.Categories, svc.Products, svc.Auth); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewServer(svc, logging.Discard(), t.TempDir())
}

func doJSON(t *testing.T, s *Server, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func login(t *testing.T, s *Server, acc service.SeedAccount) *http.Cookie {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/auth/login", map[string]any{"email": acc.Email, "password": acc.Password})
	if w.Code != http.StatusOK {
		t.Fatalf("login code %v", w.Code)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie {
			if !ck.HttpOnly {
				t.Fatalf("session cookie must be httpOnly")
			}
			return ck
		}
	}
	t.Fatalf("no session cookie")
	return nil
}

func TestAuthFlow(t *testing.T) {
	s := setupServer(t)

	// no session: null body, not an error
	w := doJSON(t, s, http.MethodGet, "/auth/me", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "null" {
		t.Fatalf("me without session: %v %q", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodPost, "/auth/register", map[string]any{"fullName": "Bob", "email": "bob@example.com", "password": "pw"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/auth/register", map[string]any{"fullName": "Bob", "email": "bob@example.com", "password": "pw"})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register code %v", w.Code)
	}

	w = doJSON(t, s, http.MethodPost, "/auth/login", map[string]any{"email": "bob@example.com", "password": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login code %v", w.Code)
	}

	ck := login(t, s, service.SeedAccount{Email: "bob@example.com", Password: "pw"})
	w = doJSON(t, s, http.MethodGet, "/auth/me", nil, ck)
	var u domain.User
	if err := json.Unmarshal(w.Body.Bytes(), &u); err != nil || u.Email != "bob@example.com" {
		t.Fatalf("me: %v %s", err, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/auth/logout", nil, ck)
	if w.Code != http.StatusOK {
		t.Fatalf("logout code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/cart", nil, ck)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %v", w.Code)
	}
}

func TestProductFlow(t *testing.T) {
	s := setupServer(t)
	admin := login(t, s, service.SeedAdmin)

	// create with image
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Desk Lamp")
	_ = mw.WriteField("price", "150000")
	_ = mw.WriteField("categoryId", "1")
	_ = mw.WriteField("stars", "4.5")
	fw, _ := mw.CreateFormFile("image", "lamp.PNG")
	_, _ = fw.Write([]byte("png"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(admin)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create code %v: %s", w.Code, w.Body.String())
	}
	var p domain.Product
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if !strings.HasPrefix(p.Image, "images/") || !strings.HasSuffix(p.Image, ".png") {
		t.Fatalf("unexpected image path %q", p.Image)
	}
	if _, err := os.Stat(filepath.Join(s.imagesDir, filepath.Base(p.Image))); err != nil {
		t.Fatalf("image not stored: %v", err)
	}
	if p.Stars == nil || *p.Stars != 4.5 {
		t.Fatalf("stars not bound")
	}

	// image served statically
	w = doJSON(t, s, http.MethodGet, "/"+p.Image, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("image code %v", w.Code)
	}

	// list with filters
	w = doJSON(t, s, http.MethodGet, "/api/products?q=lamp&min_price=100000", nil)
	var list []domain.Product
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if w.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("list code %v, %d items", w.Code, len(list))
	}

	// delete
	w = doJSON(t, s, http.MethodDelete, "/api/products/5", nil, admin)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete code %v", w.Code)
	}
}

func TestProducts_AdminOnly(t *testing.T) {
	s := setupServer(t)
	jane := login(t, s, service.SeedCustomer)

	w := doJSON(t, s, http.MethodDelete, "/api/products/1", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodDelete, "/api/products/1", nil, jane)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/categories", map[string]any{"name": "Toys"}, jane)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", w.Code)
	}
}

func TestCartAndOrderFlow(t *testing.T) {
	s := setupServer(t)
	jane := login(t, s, service.SeedCustomer)
	admin := login(t, s, service.SeedAdmin)

	w := doJSON(t, s, http.MethodPost, "/api/cart", map[string]any{"productId": 1, "quantity": 2}, jane)
	if w.Code != http.StatusCreated {
		t.Fatalf("add code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/cart", map[string]any{"productId": 2, "quantity": 1}, jane)
	if w.Code != http.StatusCreated {
		t.Fatalf("add code %v", w.Code)
	}

	// edit quantity then read back
	w = doJSON(t, s, http.MethodPut, "/api/cart/1", map[string]any{"quantity": 3}, jane)
	if w.Code != http.StatusNoContent {
		t.Fatalf("update code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPut, "/api/cart/1", map[string]any{"quantity": 0}, jane)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero quantity code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/cart", nil, jane)
	var items []domain.CartItem
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if len(items) != 2 || items[0].Quantity != 3 {
		t.Fatalf("cart: %+v", items)
	}

	// place order
	w = doJSON(t, s, http.MethodPost, "/api/order", map[string]any{
		"customerName": "Jane", "customerNumber": "0812", "customerAddress": "Jl. Merdeka 1",
		"status": "pending", "paymentMethod": "cod",
	}, jane)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order %v: %s", w.Code, w.Body.String())
	}
	var o domain.Order
	_ = json.Unmarshal(w.Body.Bytes(), &o)
	if o.Total != 3*899000+1299000 || len(o.Items) != 2 {
		t.Fatalf("order: %+v", o)
	}
	w = doJSON(t, s, http.MethodGet, "/api/cart", nil, jane)
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("cart not cleared: %s", w.Body.String())
	}

	// own orders only
	w = doJSON(t, s, http.MethodGet, "/api/order/2", nil, jane)
	if w.Code != http.StatusOK {
		t.Fatalf("own orders code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/order/1", nil, jane)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign orders code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/order", nil, jane)
	if w.Code != http.StatusForbidden {
		t.Fatalf("all orders as customer %v", w.Code)
	}

	// admin changes status
	w = doJSON(t, s, http.MethodPut, "/api/order/1", map[string]any{"status": "shipped"}, admin)
	if w.Code != http.StatusOK {
		t.Fatalf("status code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPut, "/api/order/1", map[string]any{"status": "refunded"}, admin)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad status code %v", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/order", nil, admin)
	var all []domain.Order
	_ = json.Unmarshal(w.Body.Bytes(), &all)
	if len(all) != 1 || all[0].Status != domain.OrderStatusShipped {
		t.Fatalf("orders: %+v", all)
	}

	w = doJSON(t, s, http.MethodDelete, "/api/order/1", nil, admin)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete order %v", w.Code)
	}
}

func TestHTTP_BadRequests(t *testing.T) {
	s := setupServer(t)
	jane := login(t, s, service.SeedCustomer)

	// empty cart checkout
	w := doJSON(t, s, http.MethodPost, "/api/order", map[string]any{"customerName": "J", "customerAddress": "x"}, jane)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}

	// invalid id
	w = doJSON(t, s, http.MethodGet, "/api/products/abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}

	// not found
	w = doJSON(t, s, http.MethodGet, "/api/products/999", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodDelete, "/api/cart/999", nil, jane)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", w.Code)
	}

	// quantity above the cap
	w = doJSON(t, s, http.MethodPost, "/api/cart", map[string]any{"productId": 1, "quantity": int64(1) << 62}, jane)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
	w = doJSON(t, s, http.MethodPost, "/api/cart", map[string]any{"productId": 1, "quantity": 999}, jane)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %v", w.Code)
	}

	// total far below the frozen line prices
	w = doJSON(t, s, http.MethodPost, "/api/order", map[string]any{"customerName": "J", "customerAddress": "x", "total": 1}, jane)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", w.Code)
	}
}
