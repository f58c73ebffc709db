package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

const RoleCustomer = "customer"

var validate = validator.New()

// AuthService регистрация, вход и сессии по cookie
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cost     int
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository) *AuthService {
	return &AuthService{users: users, sessions: sessions, cost: bcrypt.DefaultCost}
}

// WithCost стоимость bcrypt; в тестах используется bcrypt.MinCost
func (s *AuthService) WithCost(cost int) *AuthService {
	s.cost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	return s.create(ctx, fullName, email, password, RoleCustomer)
}

// CreateAdmin используется при начальном наполнении
func (s *AuthService) CreateAdmin(ctx context.Context, fullName, email, password string) (*domain.User, error) {
	return s.create(ctx, fullName, email, password, domain.RoleAdmin)
}

func (s *AuthService) create(ctx context.Context, fullName, email, password, role string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if err := validate.Var(email, "required,email"); err != nil || password == "" {
		return nil, ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	rec := repository.UserRecord{
		User:         domain.User{FullName: strings.TrimSpace(fullName), Email: email, Role: role},
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec.User, nil
}

// Login возвращает id новой сессии
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	rec, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, ErrUnauthorized
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword(rec.PasswordHash, []byte(password)); err != nil {
		return "", nil, ErrUnauthorized
	}
	sid := uuid.NewString()
	if err := s.sessions.Put(ctx, sid, rec.ID); err != nil {
		return "", nil, err
	}
	return sid, &rec.User, nil
}

// Me пользователь сессии или ErrUnauthorized
func (s *AuthService) Me(ctx context.Context, sid string) (*domain.User, error) {
	if sid == "" {
		return nil, ErrUnauthorized
	}
	id, err := s.sessions.Get(ctx, sid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	rec, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &rec.User, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sid)
}
