package storefront

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"storefront/internal/apiclient"
	"storefront/internal/domain"
)

const (
	RouteHome       = "/"
	RouteLogin      = "/login"
	RouteSignup     = "/signup"
	RouteAdmin      = "/admin"
	RouteStorefront = "/storefrontend"
)

var publicRoutes = map[string]bool{
	RouteHome:   true,
	RouteLogin:  true,
	RouteSignup: true,
	RouteAdmin:  true,
}

// Verdict результат входа на маршрут. Redirect пуст, если вход разрешён.
type Verdict struct {
	Allowed  bool
	Redirect string
}

// AuthGate проверяет сессию на входе в защищённые маршруты
type AuthGate struct {
	api    SessionAPI
	log    *slog.Logger
	notify Notifier

	mu   sync.Mutex
	user *domain.User
}

func NewAuthGate(api SessionAPI, log *slog.Logger, notify Notifier) *AuthGate {
	if notify == nil {
		notify = silent{}
	}
	return &AuthGate{api: api, log: log, notify: notify}
}

func (g *AuthGate) User() (domain.User, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil {
		return domain.User{}, false
	}
	return *g.user, true
}

func (g *AuthGate) setUser(u *domain.User) {
	g.mu.Lock()
	g.user = u
	g.mu.Unlock()
}

// Check вызывает /auth/me. Пустой ответ или ошибка означают истёкшую сессию.
func (g *AuthGate) Check(ctx context.Context) (*domain.User, error) {
	u, err := g.api.Me(ctx)
	if err != nil || u == nil {
		g.log.Warn("session check failed", "err", err)
		g.setUser(nil)
		g.notify.Notify("Session expired. Please login again.")
		return nil, ErrSessionExpired
	}
	g.setUser(u)
	return u, nil
}

// Enter решает, пускать ли на маршрут. Не-admin на /admin/* уходит на витрину, а не на логин.
func (g *AuthGate) Enter(ctx context.Context, route string) (Verdict, error) {
	if publicRoutes[route] {
		return Verdict{Allowed: true}, nil
	}
	u, err := g.Check(ctx)
	if err != nil {
		return Verdict{Redirect: RouteLogin}, err
	}
	if strings.HasPrefix(route, RouteAdmin+"/") && !u.IsAdmin() {
		return Verdict{Redirect: RouteStorefront}, nil
	}
	return Verdict{Allowed: true}, nil
}

func (g *AuthGate) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := g.api.Login(ctx, email, password)
	if err != nil {
		g.log.Warn("login failed", "email", email, "err", err)
		g.notify.Notify("Login failed. Check your email and password.")
		return nil, err
	}
	g.setUser(u)
	return u, nil
}

func (g *AuthGate) Register(ctx context.Context, req apiclient.RegisterRequest) (*domain.User, error) {
	u, err := g.api.Register(ctx, req)
	if err != nil {
		g.log.Warn("register failed", "email", req.Email, "err", err)
		g.notify.Notify("Registration failed.")
		return nil, err
	}
	return u, nil
}

func (g *AuthGate) Logout(ctx context.Context) error {
	if err := g.api.Logout(ctx); err != nil {
		g.log.Error("logout failed", "err", err)
		return err
	}
	g.setUser(nil)
	return nil
}
