package service

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

// SeedAccount учётная запись для начального наполнения
type SeedAccount struct {
	FullName string
	Email    string
	Password string
}

var (
	SeedAdmin    = SeedAccount{FullName: "Store Admin", Email: "admin@storefront.local", Password: "admin123"}
	SeedCustomer = SeedAccount{FullName: "Jane Customer", Email: "jane@storefront.local", Password: "jane123"}
)

func ptr(v float64) *float64 { return &v }

// Seed наполняет пустое хранилище демонстрационными данными
func Seed(ctx context.Context, cats *CategoryService, products *ProductService, auth *AuthService) error {
	audio, err := cats.Create(ctx, "Audio")
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	wearables, err := cats.Create(ctx, "Wearables")
	if err != nil {
		return fmt.Errorf("seed category: %w", err)
	}

	items := []domain.Product{
		{Name: "Wireless Headphones", Price: 899000, Image: "images/headphones.jpg", Stars: ptr(4.5), RatingCount: 120, CategoryID: audio.ID},
		{Name: "Smartwatch Pro", Price: 1299000, Image: "images/smartwatch.jpg", Stars: ptr(4), RatingCount: 80, CategoryID: wearables.ID},
		{Name: "Portable Speaker", Price: 499000, Image: "images/speaker.jpg", Stars: ptr(3.5), RatingCount: 45, CategoryID: audio.ID},
		{Name: "Fitness Band", Price: 1299000, Image: "images/band.jpg", CategoryID: wearables.ID},
	}
	for _, p := range items {
		if _, err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	if _, err := auth.CreateAdmin(ctx, SeedAdmin.FullName, SeedAdmin.Email, SeedAdmin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if _, err := auth.Register(ctx, SeedCustomer.FullName, SeedCustomer.Email, SeedCustomer.Password); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}
	return nil
}
