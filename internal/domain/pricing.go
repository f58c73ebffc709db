package domain

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxQuantity верхняя граница количества в строке корзины
const MaxQuantity int64 = 999

var (
	ErrInvalidQuantity = errors.New("quantity must be a number between 1 and 999")
	ErrUnknownPromo    = errors.New("unknown promo code")
)

// PromoKind вид скидки промокода
type PromoKind int

const (
	PromoPercent PromoKind = iota
	PromoFixed
)

// Promo запись статической таблицы промокодов
type Promo struct {
	Code  string
	Kind  PromoKind
	Value decimal.Decimal
}

var promoTable = map[string]Promo{
	"PREMIUM10": {Code: "PREMIUM10", Kind: PromoPercent, Value: decimal.NewFromInt(10)},
	"SAVE50K":   {Code: "SAVE50K", Kind: PromoFixed, Value: decimal.NewFromInt(50000)},
}

// LookupPromo ищет код в таблице без учёта регистра
func LookupPromo(code string) (Promo, error) {
	p, ok := promoTable[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Promo{}, ErrUnknownPromo
	}
	return p, nil
}

// Discount размер скидки для подытога, не больше самого подытога
func (p Promo) Discount(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	var d int64
	switch p.Kind {
	case PromoPercent:
		d = decimal.NewFromInt(subtotal).Mul(p.Value).Div(decimal.NewFromInt(100)).Round(0).IntPart()
	case PromoFixed:
		d = p.Value.Round(0).IntPart()
	}
	if d > subtotal {
		d = subtotal
	}
	return d
}

// MaxDiscount наибольшая скидка, которую даёт любой код из таблицы
func MaxDiscount(subtotal int64) int64 {
	var best int64
	for _, p := range promoTable {
		if d := p.Discount(subtotal); d > best {
			best = d
		}
	}
	return best
}

// DefaultTaxRate налог на этапе оформления
var DefaultTaxRate = decimal.NewFromFloat(0.10)

// Totals итоги корзины или оформления
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Discount int64 `json:"discount"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Subtotal сумма price × quantity по строкам
func Subtotal(items []CartItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

// Shipping суммирует стоимость доставки по выбранным способам строк
func Shipping(items []CartItem, selections map[int64]DeliveryMethod) int64 {
	var sum int64
	for _, it := range items {
		sum += selections[it.ID].Fee()
	}
	return sum
}

// Tax налог на подытог, округление half up
func Tax(subtotal int64, rate decimal.Decimal) int64 {
	if rate.IsZero() || subtotal <= 0 {
		return 0
	}
	return decimal.NewFromInt(subtotal).Mul(rate).Round(0).IntPart()
}

// Quote считает итоги. promo может быть nil.
func Quote(items []CartItem, selections map[int64]DeliveryMethod, promo *Promo, taxRate decimal.Decimal) Totals {
	t := Totals{
		Subtotal: Subtotal(items),
		Shipping: Shipping(items, selections),
	}
	if promo != nil {
		t.Discount = promo.Discount(t.Subtotal)
	}
	t.Tax = Tax(t.Subtotal, taxRate)
	t.Total = t.Subtotal + t.Shipping + t.Tax - t.Discount
	if t.Total < 0 {
		t.Total = 0
	}
	return t
}

// ParseQuantity строгий разбор количества при редактировании строки корзины
func ParseQuantity(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidQuantity
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 || n > MaxQuantity {
		return 0, ErrInvalidQuantity
	}
	return n, nil
}

// CoerceQuantity мягкий разбор для селектора количества: всё невалидное становится 1
func CoerceQuantity(raw string) int64 {
	raw = strings.TrimSpace(raw)
	// accept leading digits like "3abc"
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.ParseInt(raw[:end], 10, 64)
	if errors.Is(err, strconv.ErrRange) && raw[0] != '-' {
		return MaxQuantity
	}
	if err != nil || n < 1 {
		return 1
	}
	return min(n, MaxQuantity)
}

// FormatRupiah форматирует сумму как "Rp 1.299.000" (группировка точками, id-ID)
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "Rp " + b.String()
}
