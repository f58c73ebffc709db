package httpapi

import (
	"storefront/internal/repository"
	"storefront/internal/service"
)

// NewMemoryServices собирает сервисы поверх одного in-memory хранилища
func NewMemoryServices(bcryptCost int) Services {
	store := repository.NewMemoryStore()
	cats := repository.NewMemoryCategories(store)
	carts := repository.NewMemoryCarts(store)
	tx := repository.NewMemoryTx(store)
	return Services{
		Products:   service.NewProductService(store, cats),
		Categories: service.NewCategoryService(cats),
		Carts:      service.NewCartService(store, carts, tx),
		Orders:     service.NewOrderService(store, carts, repository.NewMemoryOrders(store), tx),
		Auth:       service.NewAuthService(repository.NewMemoryUsers(store), repository.NewMemorySessions(store)).WithCost(bcryptCost),
	}
}
