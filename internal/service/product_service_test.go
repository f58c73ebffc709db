package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

func newCatalog(t *testing.T) (*ProductService, *CategoryService) {
	t.Helper()
	store := repository.NewMemoryStore()
	cats := repository.NewMemoryCategories(store)
	return NewProductService(store, cats), NewCategoryService(cats)
}

func TestProduct_CRUD(t *testing.T) {
	ctx := context.Background()
	ps, cs := newCatalog(t)
	audio, err := cs.Create(ctx, "Audio")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	// create
	p, err := ps.Create(ctx, domain.Product{Name: "A", Price: 10, Image: "images/a.jpg", CategoryID: audio.ID})
	if err != nil {
		t.Fatalf("create err: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("expected id")
	}

	// get
	got, err := ps.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get err: %v", err)
	}
	if got.Name != "A" {
		t.Fatalf("unexpected name: %v", got.Name)
	}

	// update without a new image keeps the old one
	p.Name = "A+"
	p.Price = 12
	p.Image = ""
	up, err := ps.Update(ctx, *p)
	if err != nil {
		t.Fatalf("update err: %v", err)
	}
	if up.Name != "A+" || up.Price != 12 || up.Image != "images/a.jpg" {
		t.Fatalf("not updated: %+v", up)
	}

	// delete
	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete err: %v", err)
	}
	if _, err := ps.GetByID(ctx, p.ID); err == nil {
		t.Fatalf("expected not found after delete")
	}
}

func TestProduct_InvalidInput(t *testing.T) {
	ctx := context.Background()
	ps, _ := newCatalog(t)
	bad := 6.0
	cases := []domain.Product{
		{Name: "", Price: 10},
		{Name: "A", Price: -1},
		{Name: "A", Price: 1, Stars: &bad},
		{Name: "A", Price: 1, CategoryID: 42},
	}
	for i, p := range cases {
		if _, err := ps.Create(ctx, p); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected invalid input, got %v", i, err)
		}
	}
	if _, err := ps.Update(ctx, domain.Product{ID: 99, Name: "A"}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProduct_List_Filtering(t *testing.T) {
	ctx := context.Background()
	ps, _ := newCatalog(t)
	must := func(p *domain.Product, err error) *domain.Product {
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	_ = must(ps.Create(ctx, domain.Product{Name: "Wireless Headphones", Price: 899000}))
	_ = must(ps.Create(ctx, domain.Product{Name: "Smartwatch Pro", Price: 1299000}))
	_ = must(ps.Create(ctx, domain.Product{Name: "Portable Speaker", Price: 499000}))

	// substring
	list, err := ps.List(ctx, repository.ProductFilter{NameSubstring: "s"})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list))
	}

	// min price
	min := int64(500000)
	list, err = ps.List(ctx, repository.ProductFilter{MinPrice: &min})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	for _, p := range list {
		if p.Price < min {
			t.Fatalf("price filter failed")
		}
	}
}

func TestCategory_Create(t *testing.T) {
	ctx := context.Background()
	_, cs := newCatalog(t)
	if _, err := cs.Create(ctx, "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := cs.Create(ctx, "Audio"); err != nil {
		t.Fatal(err)
	}
	if _, err := cs.Create(ctx, "audio"); !errors.Is(err, repository.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
