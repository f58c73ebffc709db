package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"storefront/internal/domain"
)

type SortKey string

const (
	SortDefault   SortKey = ""
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortName      SortKey = "name"
	SortRating    SortKey = "rating"
)

// Query клиентский поиск, фильтр и сортировка
type Query struct {
	Search     string
	CategoryID int64
	MinPrice   *int64
	MaxPrice   *int64
	Sort       SortKey
}

func (q Query) match(p domain.Product) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(strings.TrimSpace(q.Search))) {
		return false
	}
	if q.CategoryID != 0 && p.CategoryID != q.CategoryID {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	return true
}

// CatalogBrowser список товаров и добавление в корзину
type CatalogBrowser struct {
	api    CatalogAPI
	log    *slog.Logger
	notify Notifier

	mu         sync.Mutex
	products   []domain.Product
	categories []domain.Category
	quantities map[int64]int64
}

func NewCatalogBrowser(api CatalogAPI, log *slog.Logger, notify Notifier) *CatalogBrowser {
	if notify == nil {
		notify = silent{}
	}
	return &CatalogBrowser{api: api, log: log, notify: notify, quantities: make(map[int64]int64)}
}

// Load читает товары и категории. Ошибка категорий не мешает показу товаров.
func (b *CatalogBrowser) Load(ctx context.Context) error {
	products, err := b.api.Products(ctx)
	if err != nil {
		b.log.Error("fetch products failed", "err", err)
		return err
	}
	categories, err := b.api.Categories(ctx)
	if err != nil {
		b.log.Warn("fetch categories failed", "err", err)
	}
	b.mu.Lock()
	b.products = products
	if err == nil {
		b.categories = categories
	}
	b.mu.Unlock()
	return nil
}

func (b *CatalogBrowser) Categories() []domain.Category {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Category, len(b.categories))
	copy(out, b.categories)
	return out
}

func (b *CatalogBrowser) CategoryName(id int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (b *CatalogBrowser) Product(id int64) (domain.Product, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// View применяет запрос к загруженному списку. Сортировка стабильная.
func (b *CatalogBrowser) View(q Query) []domain.Product {
	b.mu.Lock()
	out := make([]domain.Product, 0, len(b.products))
	for _, p := range b.products {
		if q.match(p) {
			out = append(out, p)
		}
	}
	b.mu.Unlock()

	switch q.Sort {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return rating(out[i]) > rating(out[j]) })
	}
	return out
}

// rating без оценки уходит в конец
func rating(p domain.Product) float64 {
	if p.Stars == nil || math.IsNaN(*p.Stars) {
		return -1
	}
	return *p.Stars
}

// SetQuantity значение селектора количества; невалидный ввод становится 1
func (b *CatalogBrowser) SetQuantity(productID int64, raw string) int64 {
	q := domain.CoerceQuantity(raw)
	b.mu.Lock()
	b.quantities[productID] = q
	b.mu.Unlock()
	return q
}

func (b *CatalogBrowser) Quantity(productID int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q, ok := b.quantities[productID]; ok {
		return q
	}
	return 1
}

// AddToCart создаёт строку корзины с выбранным количеством.
// Корзину после этого перечитывает CartReconciler.
func (b *CatalogBrowser) AddToCart(ctx context.Context, productID int64) (*domain.CartItem, error) {
	p, ok := b.Product(productID)
	if !ok {
		return nil, ErrProductNotFound
	}
	qty := b.Quantity(productID)
	item, err := b.api.AddToCart(ctx, productID, qty)
	if err != nil {
		b.log.Error("add to cart failed", "product_id", productID, "quantity", qty, "err", err)
		b.notify.Notify("Failed to add to cart.")
		return nil, err
	}
	b.notify.Notify(fmt.Sprintf("%s added to cart.", p.Name))
	return item, nil
}

// Related товары той же категории, кроме самого товара
func (b *CatalogBrowser) Related(productID int64, n int) []domain.Product {
	p, ok := b.Product(productID)
	if !ok {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Product
	for _, other := range b.products {
		if len(out) == n {
			break
		}
		if other.CategoryID == p.CategoryID && other.ID != p.ID {
			out = append(out, other)
		}
	}
	return out
}

// Stars разложение оценки на полные, половинные и пустые звёзды (из 5)
type Stars struct {
	Full, Half, Empty int
}

func RenderStars(stars *float64) Stars {
	if stars == nil || math.IsNaN(*stars) {
		return Stars{Empty: 5}
	}
	r := math.Max(0, math.Min(5, *stars))
	full := int(math.Floor(r))
	half := 0
	if r-float64(full) >= 0.5 {
		half = 1
	}
	return Stars{Full: full, Half: half, Empty: 5 - full - half}
}

func (s Stars) String() string {
	return strings.Repeat("★", s.Full) + strings.Repeat("½", s.Half) + strings.Repeat("☆", s.Empty)
}
