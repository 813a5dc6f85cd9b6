package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	pfirestore "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/firestore"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const draftsCollection = "checkout_drafts"

type draftDocument struct {
	Step        string             `firestore:"step"`
	Currency    string             `firestore:"currency"`
	Items       []cartItemDocument `firestore:"items"`
	Shipping    shippingDocument   `firestore:"shipping"`
	Zone        string             `firestore:"zone,omitempty"`
	Method      string             `firestore:"method,omitempty"`
	Slot        string             `firestore:"slot,omitempty"`
	Payment     paymentDocument    `firestore:"payment"`
	Coupon      *couponDocument    `firestore:"coupon,omitempty"`
	Quote       *quoteDocument     `firestore:"quote,omitempty"`
	Pricing     *pricingDocument   `firestore:"pricing,omitempty"`
	Notes       string             `firestore:"notes,omitempty"`
	OrderNumber string             `firestore:"orderNumber,omitempty"`
	CreatedAt   time.Time          `firestore:"createdAt"`
	UpdatedAt   time.Time          `firestore:"updatedAt"`
	PlacedAt    *time.Time         `firestore:"placedAt,omitempty"`
	ExpiresAt   time.Time          `firestore:"expiresAt"`
}

type paymentDocument struct {
	Method     string `firestore:"method,omitempty"`
	CardNumber string `firestore:"cardNumber,omitempty"`
	CardHolder string `firestore:"cardHolder,omitempty"`
	CardExpiry string `firestore:"cardExpiry,omitempty"`
}

// DraftRepository persists checkout drafts. ExpiresAt is written for a Firestore TTL policy; reads
// treat expired drafts as missing.
type DraftRepository struct {
	base *pfirestore.Collection[draftDocument]
	ttl  time.Duration
	now  func() time.Time
}

var _ repositories.CheckoutDraftRepository = (*DraftRepository)(nil)

// NewDraftRepository constructs a Firestore-backed draft repository.
func NewDraftRepository(provider *pfirestore.Provider, ttl time.Duration) (*DraftRepository, error) {
	if provider == nil {
		return nil, errors.New("draft repository requires firestore provider")
	}
	if ttl <= 0 {
		return nil, errors.New("draft repository requires a positive ttl")
	}
	return &DraftRepository{
		base: pfirestore.NewCollection[draftDocument](provider, draftsCollection),
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

func (r *DraftRepository) Get(ctx context.Context, draftID string) (domain.OrderDraft, error) {
	if r == nil || r.base == nil {
		return domain.OrderDraft{}, errors.New("draft repository not initialised")
	}
	id := strings.TrimSpace(draftID)
	if id == "" {
		return domain.OrderDraft{}, errors.New("draft repository: draft id is required")
	}

	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.OrderDraft{}, err
	}
	if !doc.Data.ExpiresAt.IsZero() && !r.now().Before(doc.Data.ExpiresAt) {
		return domain.OrderDraft{}, repositories.NewError("checkout_drafts.get", repositories.ErrorKindNotFound, fmt.Errorf("draft %s expired", id))
	}
	return decodeDraft(doc.ID, doc.Data)
}

func (r *DraftRepository) Save(ctx context.Context, draft domain.OrderDraft) error {
	if r == nil || r.base == nil {
		return errors.New("draft repository not initialised")
	}
	id := strings.TrimSpace(draft.ID)
	if id == "" {
		return errors.New("draft repository: draft id is required")
	}
	doc := encodeDraft(draft)
	doc.ExpiresAt = r.now().UTC().Add(r.ttl)
	return r.base.Set(ctx, id, doc)
}

func (r *DraftRepository) Delete(ctx context.Context, draftID string) error {
	if r == nil || r.base == nil {
		return errors.New("draft repository not initialised")
	}
	return r.base.Delete(ctx, strings.TrimSpace(draftID))
}

func encodeDraft(d domain.OrderDraft) draftDocument {
	d = d.Redacted()
	payment := paymentDocument{
		Method:     string(d.Payment.Method),
		CardNumber: d.Payment.CardNumber,
		CardHolder: d.Payment.CardHolder,
		CardExpiry: d.Payment.CardExpiry,
	}

	doc := draftDocument{
		Step:        string(d.Step),
		Currency:    d.Currency,
		Items:       encodeItems(d.Items),
		Shipping:    encodeShipping(d.Shipping),
		Zone:        string(d.Zone),
		Method:      string(d.Method),
		Slot:        string(d.Slot),
		Payment:     payment,
		Quote:       encodeQuote(d.Quote),
		Notes:       d.Notes,
		OrderNumber: d.OrderNumber,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.Coupon != nil {
		coupon := encodeCoupon(*d.Coupon)
		doc.Coupon = &coupon
	}
	if d.Pricing != nil {
		pricing := encodePricing(*d.Pricing)
		doc.Pricing = &pricing
	}
	if d.PlacedAt != nil {
		at := d.PlacedAt.UTC()
		doc.PlacedAt = &at
	}
	return doc
}

func decodeDraft(id string, doc draftDocument) (domain.OrderDraft, error) {
	items, err := decodeItems(doc.Items)
	if err != nil {
		return domain.OrderDraft{}, fmt.Errorf("firestore drafts decode %s: %w", id, err)
	}
	quote, err := decodeQuote(doc.Quote)
	if err != nil {
		return domain.OrderDraft{}, fmt.Errorf("firestore drafts decode %s: %w", id, err)
	}

	draft := domain.OrderDraft{
		ID:       id,
		Step:     domain.CheckoutStep(doc.Step),
		Currency: doc.Currency,
		Items:    items,
		Shipping: decodeShipping(doc.Shipping),
		Zone:     domain.Zone(doc.Zone),
		Method:   domain.ShippingMethod(doc.Method),
		Slot:     domain.TimeSlot(doc.Slot),
		Payment: domain.PaymentInfo{
			Method:     domain.PaymentMethod(doc.Payment.Method),
			CardNumber: doc.Payment.CardNumber,
			CardHolder: doc.Payment.CardHolder,
			CardExpiry: doc.Payment.CardExpiry,
		},
		Quote:       quote,
		Notes:       doc.Notes,
		OrderNumber: doc.OrderNumber,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
	if doc.Coupon != nil {
		coupon, err := decodeCoupon(doc.Coupon.Code, *doc.Coupon)
		if err != nil {
			return domain.OrderDraft{}, fmt.Errorf("firestore drafts decode %s: %w", id, err)
		}
		draft.Coupon = &coupon
	}
	if doc.Pricing != nil {
		pricing, err := decodePricing(*doc.Pricing)
		if err != nil {
			return domain.OrderDraft{}, fmt.Errorf("firestore drafts decode %s: %w", id, err)
		}
		draft.Pricing = &pricing
	}
	if doc.PlacedAt != nil {
		at := doc.PlacedAt.UTC()
		draft.PlacedAt = &at
	}
	return draft, nil
}
