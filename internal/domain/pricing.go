package domain

import "github.com/shopspring/decimal"

// CartItem is a cart line as supplied by the cart collaborator.
type CartItem struct {
	ProductID string
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// LineTotal returns price * quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PricingBreakdown captures the aggregated monetary results of pricing a cart.
// Amounts keep full precision until Rounded is called.
type PricingBreakdown struct {
	Currency            string
	Subtotal            decimal.Decimal
	Discount            decimal.Decimal
	ShippingCost        decimal.Decimal
	Tax                 decimal.Decimal
	Total               decimal.Decimal
	TaxRate             decimal.Decimal
	CouponCode          string
	FreeShippingApplied bool
}

// Rounded returns the display form. Each component is rounded half-up to two places and the
// total is rebuilt from the rounded components so the displayed figures always add up.
func (p PricingBreakdown) Rounded() PricingBreakdown {
	out := p
	out.Subtotal = RoundMoney(p.Subtotal)
	out.Discount = RoundMoney(p.Discount)
	out.ShippingCost = RoundMoney(p.ShippingCost)
	out.Tax = RoundMoney(p.Tax)
	out.Total = out.Subtotal.Sub(out.Discount).Add(out.ShippingCost).Add(out.Tax)
	return out
}

// Balanced reports whether total == subtotal - discount + shipping + tax.
func (p PricingBreakdown) Balanced() bool {
	return p.Total.Equal(p.Subtotal.Sub(p.Discount).Add(p.ShippingCost).Add(p.Tax))
}
