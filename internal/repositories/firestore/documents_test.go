package firestore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

func TestOrderDocumentKeepsFullPrecision(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))
	order := domain.Order{
		ID:    "ord_1",
		Items: []domain.CartItem{{ProductID: "sku", Name: "Mug", Price: decimal.RequireFromString("3.333"), Quantity: 3}},
		Pricing: domain.PricingBreakdown{
			Subtotal: decimal.RequireFromString("9.999"),
			Tax:      decimal.RequireFromString("0.79992"),
			Total:    decimal.RequireFromString("10.79892"),
			TaxRate:  decimal.RequireFromString("0.08"),
		},
		Status:        domain.OrderStatusPending,
		StatusHistory: []domain.StatusEntry{{Status: domain.OrderStatusPending, At: at}},
		PlacedAt:      at,

		PlacementFingerprint: "fp-1",
	}

	decoded, err := decodeOrder(order.ID, encodeOrder(order))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Pricing.Total.Equal(order.Pricing.Total) || !decoded.Items[0].Price.Equal(order.Items[0].Price) {
		t.Fatalf("precision lost: %+v", decoded.Pricing)
	}
	if decoded.PlacedAt.Location() != time.UTC || !decoded.PlacedAt.Equal(at) {
		t.Fatalf("expected UTC placement time, got %v", decoded.PlacedAt)
	}
	if decoded.PlacementFingerprint != "fp-1" {
		t.Fatalf("expected placement fingerprint to survive, got %q", decoded.PlacementFingerprint)
	}
	if decoded.Tracking != nil {
		t.Fatalf("expected no tracking, got %+v", decoded.Tracking)
	}
}

func TestDecodeOrderRejectsMalformedAmount(t *testing.T) {
	doc := encodeOrder(domain.Order{ID: "ord_1"})
	doc.Pricing.Total = "twelve"
	if _, err := decodeOrder("ord_1", doc); err == nil {
		t.Fatal("expected decode error for malformed total")
	}
}

func TestDraftDocumentMasksCardOncePlaced(t *testing.T) {
	draft := domain.OrderDraft{
		ID:   "draft-1",
		Step: domain.CheckoutStepReview,
		Payment: domain.PaymentInfo{
			Method:     domain.PaymentMethodCard,
			CardNumber: "4242424242424242",
			CardHolder: "Ada Lovelace",
			CardExpiry: "12/30",
		},
	}

	review := encodeDraft(draft)
	if review.Payment.CardNumber != "4242424242424242" {
		t.Fatalf("expected card kept before placement, got %q", review.Payment.CardNumber)
	}

	draft.Step = domain.CheckoutStepPlaced
	placed := encodeDraft(draft)
	if placed.Payment.CardNumber != "4242" || placed.Payment.CardExpiry != "" {
		t.Fatalf("expected masked card after placement, got %+v", placed.Payment)
	}
}

func TestDraftDocumentRoundTripsCouponAndQuote(t *testing.T) {
	minimum := decimal.NewFromInt(50)
	expires := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	draft := domain.OrderDraft{
		ID:   "draft-2",
		Step: domain.CheckoutStepPayment,
		Coupon: &domain.Coupon{
			Code: "save10", Kind: domain.CouponKindPercentage, Value: decimal.NewFromInt(10),
			MinSubtotal: &minimum, ExpiresAt: &expires,
		},
		Quote: &domain.ShippingQuote{
			Zone: domain.ZoneLocal, Method: domain.ShippingMethodExpress, Slot: domain.TimeSlotMorning,
			Cost: decimal.RequireFromString("9.5"), MinDays: 1, MaxDays: 1,
		},
	}

	decoded, err := decodeDraft(draft.ID, encodeDraft(draft))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Coupon == nil || decoded.Coupon.Code != "SAVE10" {
		t.Fatalf("expected normalised coupon code, got %+v", decoded.Coupon)
	}
	if decoded.Coupon.MinSubtotal == nil || !decoded.Coupon.MinSubtotal.Equal(minimum) {
		t.Fatalf("expected minimum subtotal, got %+v", decoded.Coupon)
	}
	if decoded.Quote == nil || !decoded.Quote.Cost.Equal(decimal.RequireFromString("9.5")) {
		t.Fatalf("unexpected quote %+v", decoded.Quote)
	}
	if decoded.Pricing != nil || decoded.PlacedAt != nil {
		t.Fatalf("expected empty optional fields, got %+v", decoded)
	}
}

func TestDecodeCouponFallsBackToDocumentID(t *testing.T) {
	coupon, err := decodeCoupon("welcome5", couponDocument{Kind: " FLAT ", Value: "5"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if coupon.Code != "WELCOME5" || coupon.Kind != domain.CouponKindFlat {
		t.Fatalf("unexpected coupon %+v", coupon)
	}
}
