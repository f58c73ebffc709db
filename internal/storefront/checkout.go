package storefront

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/apiclient"
	"storefront/internal/domain"
)

// Step шаг оформления заказа
type Step int

const (
	StepShipping Step = iota
	StepPayment
	StepReview
	StepPlaced
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepPlaced:
		return "placed"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Address поля адреса доставки
type Address struct {
	Name   string
	Phone  string
	Street string
	City   string
	Postal string
}

// AddressFields порядок полей формы
var AddressFields = []string{"name", "phone", "street", "city", "postal"}

func (a *Address) field(name string) (*string, bool) {
	switch name {
	case "name":
		return &a.Name, true
	case "phone":
		return &a.Phone, true
	case "street":
		return &a.Street, true
	case "city":
		return &a.City, true
	case "postal":
		return &a.Postal, true
	}
	return nil, false
}

// Missing пустые поля с текстом ошибки
func (a Address) Missing() map[string]string {
	errs := make(map[string]string)
	for _, name := range AddressFields {
		v, _ := a.field(name)
		if strings.TrimSpace(*v) == "" {
			errs[name] = fmt.Sprintf("Please fill in your %s", name)
		}
	}
	return errs
}

// Formatted адрес в виде "street, city, postal"
func (a Address) Formatted() string {
	return fmt.Sprintf("%s, %s, %s", strings.TrimSpace(a.Street), strings.TrimSpace(a.City), strings.TrimSpace(a.Postal))
}

// RedirectHome маршрут после успешного заказа
const RedirectHome = "/"

// CheckoutFlow линейный мастер Shipping → Payment → Review.
// Вперёд только через валидацию, назад всегда.
type CheckoutFlow struct {
	api     CheckoutAPI
	log     *slog.Logger
	notify  Notifier
	taxRate decimal.Decimal

	mu       sync.Mutex
	step     Step
	address  Address
	payment  domain.PaymentMethod
	terms    bool
	errs     map[string]string
	items    []domain.CartItem
	delivery map[int64]domain.DeliveryMethod
	promo    *domain.Promo
	placed   *domain.Order
}

func NewCheckoutFlow(api CheckoutAPI, log *slog.Logger, notify Notifier, taxRate decimal.Decimal) *CheckoutFlow {
	if notify == nil {
		notify = silent{}
	}
	return &CheckoutFlow{
		api:      api,
		log:      log,
		notify:   notify,
		taxRate:  taxRate,
		errs:     make(map[string]string),
		delivery: make(map[int64]domain.DeliveryMethod),
	}
}

// Load перечитывает корзину с сервера
func (f *CheckoutFlow) Load(ctx context.Context) error {
	items, err := f.api.Cart(ctx)
	if err != nil {
		f.log.Error("fetch cart for checkout failed", "err", err)
		return err
	}
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
	return nil
}

// CarryOver переносит выбор доставки и промокод из корзины
func (f *CheckoutFlow) CarryOver(cart *CartReconciler) {
	sel, promo := cart.Selections()
	f.mu.Lock()
	f.delivery = sel
	f.promo = promo
	f.mu.Unlock()
}

func (f *CheckoutFlow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *CheckoutFlow) Items() []domain.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.CartItem, len(f.items))
	copy(out, f.items)
	return out
}

// Errors ошибки полей последней попытки перехода
func (f *CheckoutFlow) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errs))
	for k, v := range f.errs {
		out[k] = v
	}
	return out
}

func (f *CheckoutFlow) SetAddress(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	dst, ok := f.address.field(field)
	if !ok {
		return fmt.Errorf("unknown address field %q", field)
	}
	*dst = value
	delete(f.errs, field)
	return nil
}

func (f *CheckoutFlow) SetAddressFields(a Address) {
	f.mu.Lock()
	f.address = a
	for _, k := range AddressFields {
		delete(f.errs, k)
	}
	f.mu.Unlock()
}

func (f *CheckoutFlow) Address() Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.address
}

func (f *CheckoutFlow) SelectPayment(m domain.PaymentMethod) error {
	if !m.Valid() {
		return domain.ErrInvalidPayment
	}
	f.mu.Lock()
	f.payment = m
	delete(f.errs, "payment")
	f.mu.Unlock()
	return nil
}

func (f *CheckoutFlow) SelectDelivery(itemID int64, m domain.DeliveryMethod) error {
	if !m.Valid() {
		return domain.ErrInvalidDelivery
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !hasLine(f.items, itemID) {
		return ErrLineNotFound
	}
	f.delivery[itemID] = m
	return nil
}

func (f *CheckoutFlow) ApplyPromo(code string) error {
	p, err := domain.LookupPromo(code)
	if err != nil {
		f.notify.Notify(fmt.Sprintf("Promo code %q is not valid.", code))
		return err
	}
	f.mu.Lock()
	f.promo = &p
	f.mu.Unlock()
	return nil
}

func (f *CheckoutFlow) AcceptTerms(accepted bool) {
	f.mu.Lock()
	f.terms = accepted
	if accepted {
		delete(f.errs, "terms")
	}
	f.mu.Unlock()
}

// Next переходит на следующий шаг, если текущий валиден
func (f *CheckoutFlow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.step {
	case StepShipping:
		if errs := f.address.Missing(); len(errs) > 0 {
			f.errs = errs
			return ErrAddressIncomplete
		}
		f.errs = make(map[string]string)
		f.step = StepPayment
	case StepPayment:
		if !f.payment.Valid() {
			f.errs = map[string]string{"payment": "Please select a payment method"}
			return ErrPaymentRequired
		}
		f.errs = make(map[string]string)
		f.step = StepReview
	default:
		return ErrWrongStep
	}
	return nil
}

// Back всегда разрешён; на первом шаге ничего не делает
func (f *CheckoutFlow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step > StepShipping && f.step < StepPlaced {
		f.step--
		f.errs = make(map[string]string)
	}
}

// Totals подытог + доставка + налог − скидка
func (f *CheckoutFlow) Totals() domain.Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Quote(f.items, f.delivery, f.promo, f.taxRate)
}

// Submit создаёт заказ из текущей корзины. При ошибке мастер остаётся на Review.
func (f *CheckoutFlow) Submit(ctx context.Context) (*domain.Order, error) {
	f.mu.Lock()
	if f.step != StepReview {
		f.mu.Unlock()
		return nil, ErrWrongStep
	}
	if errs := f.address.Missing(); len(errs) > 0 {
		f.errs = errs
		f.mu.Unlock()
		return nil, ErrAddressIncomplete
	}
	if !f.payment.Valid() {
		f.errs = map[string]string{"payment": "Please select a payment method"}
		f.mu.Unlock()
		return nil, ErrPaymentRequired
	}
	if !f.terms {
		f.errs = map[string]string{"terms": "Please accept the terms and conditions"}
		f.mu.Unlock()
		f.notify.Notify("Please accept the terms and conditions.")
		return nil, ErrTermsNotAccepted
	}
	if len(f.items) == 0 {
		f.mu.Unlock()
		f.notify.Notify("Your cart is empty.")
		return nil, ErrEmptyCart
	}
	req := apiclient.CreateOrderRequest{
		CustomerName:    strings.TrimSpace(f.address.Name),
		CustomerNumber:  strings.TrimSpace(f.address.Phone),
		CustomerAddress: f.address.Formatted(),
		Status:          domain.OrderStatusPending,
		PaymentMethod:   f.payment,
		Total:           domain.Quote(f.items, f.delivery, f.promo, f.taxRate).Total,
	}
	f.mu.Unlock()

	o, err := f.api.CreateOrder(ctx, req)
	if err != nil {
		f.log.Error("place order failed", "err", err)
		f.notify.Notify("Failed to place order.")
		return nil, err
	}

	f.mu.Lock()
	f.step = StepPlaced
	f.placed = o
	f.mu.Unlock()
	f.log.Info("order placed", "order_id", o.ID, "total", o.Total)
	f.notify.Notify("Order placed successfully!")
	return o, nil
}

// Redirect маршрут после завершения; пусто, пока заказ не создан
func (f *CheckoutFlow) Redirect() string {
	if f.Step() == StepPlaced {
		return RedirectHome
	}
	return ""
}

func hasLine(items []domain.CartItem, id int64) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}
