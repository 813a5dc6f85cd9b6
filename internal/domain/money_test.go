package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundMoneyHalfUp(t *testing.T) {
	cases := map[string]string{
		"3.605":  "3.61",
		"3.6049": "3.60",
		"0.005":  "0.01",
		"12":     "12.00",
	}
	for in, want := range cases {
		got := FormatMoney(RoundMoney(decimal.RequireFromString(in)))
		if got != want {
			t.Fatalf("round %s: expected %s, got %s", in, want, got)
		}
	}
}

func TestPricingBreakdownRoundedStaysBalanced(t *testing.T) {
	p := PricingBreakdown{
		Subtotal:     decimal.RequireFromString("33.33"),
		Discount:     decimal.RequireFromString("3.333"),
		ShippingCost: decimal.RequireFromString("12"),
		Tax:          decimal.RequireFromString("2.39976"),
	}
	p.Total = p.Subtotal.Sub(p.Discount).Add(p.ShippingCost).Add(p.Tax)
	if !p.Balanced() {
		t.Fatalf("expected exact breakdown to balance")
	}
	r := p.Rounded()
	if !r.Balanced() {
		t.Fatalf("expected rounded breakdown to balance: %+v", r)
	}
	if FormatMoney(r.Discount) != "3.33" || FormatMoney(r.Tax) != "2.40" {
		t.Fatalf("unexpected rounding: discount %s tax %s", r.Discount, r.Tax)
	}
}

func TestOrderPayloadCartItemsRoundTrip(t *testing.T) {
	order := Order{
		ID: "ord_1",
		Items: []CartItem{
			{ProductID: "p1", Name: "Mug", Price: decimal.RequireFromString("12.345"), Quantity: 2},
		},
	}
	items, err := NewOrderPayload(order).CartItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || !items[0].Price.Equal(order.Items[0].Price) || items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestParseMoneyRejectsNegative(t *testing.T) {
	if _, err := ParseMoney("-1"); err != ErrNegativeAmount {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}
