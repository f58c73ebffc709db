package service

import (
	"context"
	"errors"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// CartService корзина текущего пользователя. Строки отдаются со снимком товара.
type CartService struct {
	products repository.ProductRepository
	carts    repository.CartRepository
	tx       repository.TxManager
}

func NewCartService(products repository.ProductRepository, carts repository.CartRepository, tx repository.TxManager) *CartService {
	return &CartService{products: products, carts: carts, tx: tx}
}

// List строки корзины; строки удалённых товаров пропускаются
func (s *CartService) List(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CartItem, 0, len(lines))
	for _, l := range lines {
		p, err := s.products.GetByID(ctx, l.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, domain.CartItem{ID: l.ID, Product: *p, Quantity: l.Quantity})
	}
	return out, nil
}

// Add кладёт товар в корзину. Повторное добавление того же товара увеличивает количество строки.
func (s *CartService) Add(ctx context.Context, userID, productID, quantity int64) (*domain.CartItem, error) {
	if userID <= 0 || productID <= 0 || quantity < 1 || quantity > domain.MaxQuantity {
		return nil, ErrInvalidInput
	}
	var item *domain.CartItem
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		lines, err := s.carts.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if l.ProductID != productID {
				continue
			}
			if l.Quantity+quantity > domain.MaxQuantity {
				return ErrInvalidInput
			}
			l.Quantity += quantity
			if err := s.carts.Update(ctx, &l); err != nil {
				return err
			}
			item = &domain.CartItem{ID: l.ID, Product: *p, Quantity: l.Quantity}
			return nil
		}
		l := repository.CartLine{UserID: userID, ProductID: productID, Quantity: quantity}
		if err := s.carts.Add(ctx, &l); err != nil {
			return err
		}
		item = &domain.CartItem{ID: l.ID, Product: *p, Quantity: l.Quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// owned строка корзины, принадлежащая пользователю; чужая выглядит как отсутствующая
func (s *CartService) owned(ctx context.Context, userID, lineID int64) (*repository.CartLine, error) {
	l, err := s.carts.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if l.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return l, nil
}

func (s *CartService) Update(ctx context.Context, userID, lineID, quantity int64) error {
	if lineID <= 0 || quantity < 1 || quantity > domain.MaxQuantity {
		return ErrInvalidInput
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		l, err := s.owned(ctx, userID, lineID)
		if err != nil {
			return err
		}
		l.Quantity = quantity
		return s.carts.Update(ctx, l)
	})
}

func (s *CartService) Delete(ctx context.Context, userID, lineID int64) error {
	if lineID <= 0 {
		return ErrInvalidInput
	}
	return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.owned(ctx, userID, lineID); err != nil {
			return err
		}
		return s.carts.Delete(ctx, lineID)
	})
}
