package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type lineEdit struct {
	itemID int64
	buffer string
}

// CartReconciler держит последнее прочитанное с сервера состояние корзины.
// Локальное количество никогда не патчится: после записи корзина перечитывается.
type CartReconciler struct {
	api    CartAPI
	log    *slog.Logger
	notify Notifier

	mu       sync.Mutex
	items    []domain.CartItem
	editing  *lineEdit
	delivery map[int64]domain.DeliveryMethod
	promo    *domain.Promo
}

func NewCartReconciler(api CartAPI, log *slog.Logger, notify Notifier) *CartReconciler {
	if notify == nil {
		notify = silent{}
	}
	return &CartReconciler{
		api:      api,
		log:      log,
		notify:   notify,
		delivery: make(map[int64]domain.DeliveryMethod),
	}
}

// FetchCart заменяет локальное состояние целиком. При ошибке остаётся прежний список.
func (r *CartReconciler) FetchCart(ctx context.Context) error {
	items, err := r.api.Cart(ctx)
	if err != nil {
		r.log.Error("fetch cart failed", "err", err)
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = items
	present := make(map[int64]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}
	for id := range r.delivery {
		if !present[id] {
			delete(r.delivery, id)
		}
	}
	if r.editing != nil && !present[r.editing.itemID] {
		r.editing = nil
	}
	return nil
}

func (r *CartReconciler) Items() []domain.CartItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.CartItem, len(r.items))
	copy(out, r.items)
	return out
}

func (r *CartReconciler) find(itemID int64) (domain.CartItem, bool) {
	for _, it := range r.items {
		if it.ID == itemID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

// BeginEdit переводит строку в режим редактирования.
// Незавершённое редактирование другой строки отбрасывается без сохранения.
func (r *CartReconciler) BeginEdit(itemID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.find(itemID)
	if !ok {
		return ErrLineNotFound
	}
	q := it.Quantity
	if q < 1 {
		q = 1
	}
	r.editing = &lineEdit{itemID: itemID, buffer: strconv.FormatInt(q, 10)}
	return nil
}

// SetEditValue меняет буфер текущего редактирования
func (r *CartReconciler) SetEditValue(raw string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.editing != nil {
		r.editing.buffer = raw
	}
}

// Editing возвращает id редактируемой строки и её буфер
func (r *CartReconciler) Editing() (int64, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.editing == nil {
		return 0, "", false
	}
	return r.editing.itemID, r.editing.buffer, true
}

func (r *CartReconciler) CancelEdit() {
	r.mu.Lock()
	r.editing = nil
	r.mu.Unlock()
}

// CommitEdit проверяет количество и сохраняет его на сервере.
// Невалидное значение отклоняется локально, запрос не отправляется.
func (r *CartReconciler) CommitEdit(ctx context.Context, itemID int64, raw string) error {
	qty, err := domain.ParseQuantity(raw)
	if err != nil {
		r.notify.Notify("Quantity must be a number between 1 and 999.")
		return err
	}
	if err := r.api.UpdateCartItem(ctx, itemID, qty); err != nil {
		r.log.Error("update cart line failed", "item_id", itemID, "quantity", qty, "err", err)
		r.notify.Notify("Failed to update quantity.")
		return err
	}
	r.mu.Lock()
	if r.editing != nil && r.editing.itemID == itemID {
		r.editing = nil
	}
	r.mu.Unlock()
	return r.FetchCart(ctx)
}

// CommitCurrentEdit сохраняет буфер текущего редактирования
func (r *CartReconciler) CommitCurrentEdit(ctx context.Context) error {
	id, buf, ok := r.Editing()
	if !ok {
		return ErrLineNotFound
	}
	return r.CommitEdit(ctx, id, buf)
}

func (r *CartReconciler) DeleteLine(ctx context.Context, itemID int64) error {
	if err := r.api.DeleteCartItem(ctx, itemID); err != nil {
		r.log.Error("delete cart line failed", "item_id", itemID, "err", err)
		return err
	}
	return r.FetchCart(ctx)
}

// SelectDelivery выбирает способ доставки для строки
func (r *CartReconciler) SelectDelivery(itemID int64, m domain.DeliveryMethod) error {
	if !m.Valid() {
		return domain.ErrInvalidDelivery
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.find(itemID); !ok {
		return ErrLineNotFound
	}
	r.delivery[itemID] = m
	return nil
}

// ApplyPromo применяет код из статической таблицы; неизвестный код итог не меняет
func (r *CartReconciler) ApplyPromo(code string) error {
	p, err := domain.LookupPromo(code)
	if err != nil {
		r.notify.Notify(fmt.Sprintf("Promo code %q is not valid.", code))
		return err
	}
	r.mu.Lock()
	r.promo = &p
	r.mu.Unlock()
	return nil
}

func (r *CartReconciler) ClearPromo() {
	r.mu.Lock()
	r.promo = nil
	r.mu.Unlock()
}

// Selections копия выбранных способов доставки и промокода
func (r *CartReconciler) Selections() (map[int64]domain.DeliveryMethod, *domain.Promo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sel := make(map[int64]domain.DeliveryMethod, len(r.delivery))
	for k, v := range r.delivery {
		sel[k] = v
	}
	var p *domain.Promo
	if r.promo != nil {
		cp := *r.promo
		p = &cp
	}
	return sel, p
}

// Totals итоги корзины без налога
func (r *CartReconciler) Totals() domain.Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.Quote(r.items, r.delivery, r.promo, decimal.Zero)
}
