package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu sync.RWMutex

	nextProdID     int64
	nextCategoryID int64
	nextLineID     int64
	nextOrderID    int64
	nextUserID     int64

	productsByID   map[int64]domain.Product
	categoriesByID map[int64]domain.Category
	linesByID      map[int64]CartLine
	ordersByID     map[int64]domain.Order
	usersByID      map[int64]UserRecord
	sessions       map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextProdID:     1,
		nextCategoryID: 1,
		nextLineID:     1,
		nextOrderID:    1,
		nextUserID:     1,
		productsByID:   make(map[int64]domain.Product),
		categoriesByID: make(map[int64]domain.Category),
		linesByID:      make(map[int64]CartLine),
		ordersByID:     make(map[int64]domain.Order),
		usersByID:      make(map[int64]UserRecord),
		sessions:       make(map[string]int64),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p.ID = m.nextProdID
	m.nextProdID++
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	return nil
}

// List возвращает товары по возрастанию id
func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, id := range sortedIDs(m.productsByID) {
		p := m.productsByID[id]
		if !containsIgnoreCase(p.Name, f.NameSubstring) {
			continue
		}
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// MemoryCategories CategoryRepository поверх MemoryStore
type MemoryCategories struct{ store *MemoryStore }

func NewMemoryCategories(store *MemoryStore) *MemoryCategories { return &MemoryCategories{store: store} }

var _ CategoryRepository = (*MemoryCategories)(nil)

func (mc *MemoryCategories) Create(ctx context.Context, c *domain.Category) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	for _, existing := range mc.store.categoriesByID {
		if strings.EqualFold(existing.Name, c.Name) {
			return ErrConflict
		}
	}
	c.ID = mc.store.nextCategoryID
	mc.store.nextCategoryID++
	mc.store.categoriesByID[c.ID] = *c
	return nil
}

func (mc *MemoryCategories) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.categoriesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (mc *MemoryCategories) List(ctx context.Context) ([]domain.Category, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.Category, 0, len(mc.store.categoriesByID))
	for _, id := range sortedIDs(mc.store.categoriesByID) {
		out = append(out, mc.store.categoriesByID[id])
	}
	return out, nil
}

// MemoryCarts CartRepository поверх MemoryStore
type MemoryCarts struct{ store *MemoryStore }

func NewMemoryCarts(store *MemoryStore) *MemoryCarts { return &MemoryCarts{store: store} }

var _ CartRepository = (*MemoryCarts)(nil)

func (mc *MemoryCarts) Add(ctx context.Context, l *CartLine) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	l.ID = mc.store.nextLineID
	mc.store.nextLineID++
	mc.store.linesByID[l.ID] = *l
	return nil
}

func (mc *MemoryCarts) GetByID(ctx context.Context, id int64) (*CartLine, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	l, ok := mc.store.linesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (mc *MemoryCarts) Update(ctx context.Context, l *CartLine) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.linesByID[l.ID]; !ok {
		return ErrNotFound
	}
	mc.store.linesByID[l.ID] = *l
	return nil
}

func (mc *MemoryCarts) Delete(ctx context.Context, id int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.linesByID[id]; !ok {
		return ErrNotFound
	}
	delete(mc.store.linesByID, id)
	return nil
}

func (mc *MemoryCarts) ListByUser(ctx context.Context, userID int64) ([]CartLine, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]CartLine, 0)
	for _, id := range sortedIDs(mc.store.linesByID) {
		if l := mc.store.linesByID[id]; l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (mc *MemoryCarts) ClearUser(ctx context.Context, userID int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	for id, l := range mc.store.linesByID {
		if l.UserID == userID {
			delete(mc.store.linesByID, id)
		}
	}
	return nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func copyOrder(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.nextOrderID
	mo.store.nextOrderID++
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	mo.store.ordersByID[o.ID] = copyOrder(*o)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (mo *MemoryOrders) Update(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[o.ID]; !ok {
		return ErrNotFound
	}
	mo.store.ordersByID[o.ID] = copyOrder(*o)
	return nil
}

func (mo *MemoryOrders) Delete(ctx context.Context, id int64) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	if _, ok := mo.store.ordersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mo.store.ordersByID, id)
	return nil
}

func (mo *MemoryOrders) List(ctx context.Context) ([]domain.Order, error) {
	return mo.list(ctx, func(domain.Order) bool { return true })
}

func (mo *MemoryOrders) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	return mo.list(ctx, func(o domain.Order) bool { return o.UserID == userID })
}

func (mo *MemoryOrders) list(ctx context.Context, keep func(domain.Order) bool) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0)
	for _, id := range sortedIDs(mo.store.ordersByID) {
		if o := mo.store.ordersByID[id]; keep(o) {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

// MemoryUsers UserRepository поверх MemoryStore
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (us *MemoryUsers) Create(ctx context.Context, u *UserRecord) error {
	us.store.wlock(ctx)
	defer us.store.wunlock(ctx)
	for _, existing := range us.store.usersByID {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	u.ID = us.store.nextUserID
	us.store.nextUserID++
	us.store.usersByID[u.ID] = *u
	return nil
}

func (us *MemoryUsers) GetByID(ctx context.Context, id int64) (*UserRecord, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	u, ok := us.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (us *MemoryUsers) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	us.store.rlock(ctx)
	defer us.store.runlock(ctx)
	for _, u := range us.store.usersByID {
		if strings.EqualFold(u.Email, email) {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// MemorySessions SessionRepository поверх MemoryStore
type MemorySessions struct{ store *MemoryStore }

func NewMemorySessions(store *MemoryStore) *MemorySessions { return &MemorySessions{store: store} }

var _ SessionRepository = (*MemorySessions)(nil)

func (ms *MemorySessions) Put(ctx context.Context, sid string, userID int64) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	ms.store.sessions[sid] = userID
	return nil
}

func (ms *MemorySessions) Get(ctx context.Context, sid string) (int64, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	id, ok := ms.store.sessions[sid]
	if !ok {
		return 0, ErrNotFound
	}
	return id, nil
}

func (ms *MemorySessions) Delete(ctx context.Context, sid string) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	delete(ms.store.sessions, sid)
	return nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
