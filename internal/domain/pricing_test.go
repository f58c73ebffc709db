package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func scenarioCart() []CartItem {
	return []CartItem{
		{ID: 1, Product: Product{ID: 1, Name: "Wireless Headphones", Price: 899000}, Quantity: 2},
		{ID: 2, Product: Product{ID: 2, Name: "Smartwatch Pro", Price: 1299000}, Quantity: 1},
	}
}

func mustPromo(t *testing.T, code string) *Promo {
	t.Helper()
	p, err := LookupPromo(code)
	if err != nil {
		t.Fatalf("lookup %s: %v", code, err)
	}
	return &p
}

func TestQuote_NoPromoStandardShipping(t *testing.T) {
	got := Quote(scenarioCart(), nil, nil, decimal.Zero)
	if got.Subtotal != 3097000 {
		t.Fatalf("subtotal expected 3097000, got %v", got.Subtotal)
	}
	if got.Shipping != 0 || got.Discount != 0 || got.Tax != 0 {
		t.Fatalf("unexpected adjustments: %+v", got)
	}
	if got.Total != 3097000 {
		t.Fatalf("total expected 3097000, got %v", got.Total)
	}
}

func TestQuote_Promos(t *testing.T) {
	cases := []struct {
		code     string
		discount int64
		total    int64
	}{
		{"PREMIUM10", 309700, 2787300},
		{"SAVE50K", 50000, 3047000},
		{" premium10 ", 309700, 2787300},
	}
	for _, tc := range cases {
		got := Quote(scenarioCart(), nil, mustPromo(t, tc.code), decimal.Zero)
		if got.Discount != tc.discount || got.Total != tc.total {
			t.Fatalf("%s: expected discount %v total %v, got %+v", tc.code, tc.discount, tc.total, got)
		}
	}
}

func TestLookupPromo_Unknown(t *testing.T) {
	if _, err := LookupPromo("FREEMONEY"); err != ErrUnknownPromo {
		t.Fatalf("expected ErrUnknownPromo, got %v", err)
	}
	if _, err := LookupPromo(""); err != ErrUnknownPromo {
		t.Fatalf("expected ErrUnknownPromo for empty code, got %v", err)
	}
}

func TestPromo_FixedCappedAtSubtotal(t *testing.T) {
	p := mustPromo(t, "SAVE50K")
	if d := p.Discount(20000); d != 20000 {
		t.Fatalf("expected capped discount 20000, got %v", d)
	}
	if d := p.Discount(0); d != 0 {
		t.Fatalf("expected 0 discount on empty cart, got %v", d)
	}
}

func TestQuote_ShippingPerLine(t *testing.T) {
	sel := map[int64]DeliveryMethod{1: DeliveryExpress, 2: DeliverySameDay}
	got := Quote(scenarioCart(), sel, nil, decimal.Zero)
	if got.Shipping != 9900+19900 {
		t.Fatalf("shipping expected %v, got %v", 9900+19900, got.Shipping)
	}
	if got.Total != 3097000+29800 {
		t.Fatalf("total expected %v, got %v", 3097000+29800, got.Total)
	}
}

func TestQuote_Tax(t *testing.T) {
	got := Quote(scenarioCart(), nil, nil, DefaultTaxRate)
	if got.Tax != 309700 {
		t.Fatalf("tax expected 309700, got %v", got.Tax)
	}
	if got.Total != 3406700 {
		t.Fatalf("total expected 3406700, got %v", got.Total)
	}

	// rounding half up
	if tax := Tax(15, DefaultTaxRate); tax != 2 {
		t.Fatalf("expected 2, got %v", tax)
	}
}

func TestParseQuantity(t *testing.T) {
	for _, raw := range []string{"", "  ", "abc", "0", "-3", "1.5", "2x", "1000", "9223372036854775807"} {
		if _, err := ParseQuantity(raw); err != ErrInvalidQuantity {
			t.Fatalf("%q: expected ErrInvalidQuantity, got %v", raw, err)
		}
	}
	n, err := ParseQuantity(" 4 ")
	if err != nil || n != 4 {
		t.Fatalf("expected 4, got %v %v", n, err)
	}
	if n, err := ParseQuantity("999"); err != nil || n != MaxQuantity {
		t.Fatalf("expected upper bound accepted, got %v %v", n, err)
	}
}

func TestMaxDiscount(t *testing.T) {
	// 10% beats the fixed 50k above 500k
	if got := MaxDiscount(3097000); got != 309700 {
		t.Fatalf("expected 309700, got %d", got)
	}
	if got := MaxDiscount(200000); got != 50000 {
		t.Fatalf("expected 50000, got %d", got)
	}
	if got := MaxDiscount(0); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestCoerceQuantity(t *testing.T) {
	cases := map[string]int64{
		"":     1,
		"abc":  1,
		"0":    1,
		"-2":   1,
		"3":    3,
		"5pcs": 5,
		"1000": MaxQuantity,
		"99999999999999999999": MaxQuantity,
	}
	for raw, want := range cases {
		if got := CoerceQuantity(raw); got != want {
			t.Fatalf("%q: expected %v, got %v", raw, want, got)
		}
	}
}

func TestOrderStatus_Vocabulary(t *testing.T) {
	colors := map[OrderStatus]string{
		OrderStatusPending:    "yellow",
		OrderStatusProcessing: "blue",
		OrderStatusShipped:    "purple",
		OrderStatusDelivered:  "green",
		OrderStatusCancelled:  "red",
	}
	if len(OrderStatuses()) != len(colors) {
		t.Fatalf("vocabulary size mismatch")
	}
	for _, s := range OrderStatuses() {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
		if s.Badge() != colors[s] {
			t.Fatalf("%s: badge %s, want %s", s, s.Badge(), colors[s])
		}
	}
	if OrderStatus("refunded").Valid() || OrderStatus("refunded").Badge() != "gray" {
		t.Fatalf("unknown status handling")
	}
	if _, err := ParseOrderStatus("Shipped"); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestOrder_ItemsTotalUsesFrozenPrice(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 2, Price: 899000, Product: Product{Price: 999999}},
	}}
	if o.ItemsTotal() != 1798000 {
		t.Fatalf("expected frozen price total, got %v", o.ItemsTotal())
	}
}

func TestFormatRupiah(t *testing.T) {
	cases := map[int64]string{
		0:       "Rp 0",
		999:     "Rp 999",
		1000:    "Rp 1.000",
		3097000: "Rp 3.097.000",
		-50000:  "-Rp 50.000",
	}
	for in, want := range cases {
		if got := FormatRupiah(in); got != want {
			t.Fatalf("FormatRupiah(%d) = %q, want %q", in, got, want)
		}
	}
}
