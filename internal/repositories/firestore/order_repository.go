package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	pfirestore "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/firestore"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/repositories"
)

const ordersCollection = "orders"

type orderDocument struct {
	OrderNumber      string                `firestore:"orderNumber"`
	Currency         string                `firestore:"currency"`
	Items            []cartItemDocument    `firestore:"items"`
	Pricing          pricingDocument       `firestore:"pricing"`
	Shipping         shippingDocument      `firestore:"shipping"`
	Zone             string                `firestore:"zone"`
	ShippingMethod   string                `firestore:"shippingMethod"`
	DeliveryTimeSlot string                `firestore:"deliveryTimeSlot"`
	DeliveryEarliest time.Time             `firestore:"deliveryEarliest"`
	DeliveryLatest   time.Time             `firestore:"deliveryLatest"`
	PaymentMethod    string                `firestore:"paymentMethod"`
	CardLast4        string                `firestore:"cardLast4,omitempty"`
	Notes            string                `firestore:"notes,omitempty"`
	Status           string                `firestore:"status"`
	StatusHistory    []statusEntryDocument `firestore:"statusHistory"`
	Tracking         *trackingDocument     `firestore:"tracking,omitempty"`
	PlacedAt         time.Time             `firestore:"placedAt"`
	UpdatedAt        time.Time             `firestore:"updatedAt"`
	Fingerprint      string                `firestore:"placementFingerprint,omitempty"`
}

// OrderRepository stores placed orders keyed by order ID. Only lifecycle fields change after
// insertion.
type OrderRepository struct {
	base *pfirestore.Collection[orderDocument]
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		base: pfirestore.NewCollection[orderDocument](provider, ordersCollection),
	}, nil
}

// Insert creates the order document. Inside a transaction the existing document is read first so
// a duplicate surfaces as a conflict before any write is buffered.
func (r *OrderRepository) Insert(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	id := strings.TrimSpace(order.ID)
	if id == "" {
		return errors.New("order repository: order id is required")
	}

	if _, ok := pfirestore.TransactionFromContext(ctx); ok {
		_, err := r.base.Get(ctx, id)
		switch {
		case err == nil:
			return pfirestore.WrapError("orders.insert", status.Errorf(codes.AlreadyExists, "order %s already exists", id))
		case !repositories.IsNotFound(err):
			return err
		}
	}

	return r.base.Create(ctx, id, encodeOrder(order))
}

// Update writes the lifecycle fields of an existing order. A missing order is reported as not
// found.
func (r *OrderRepository) Update(ctx context.Context, order domain.Order) error {
	if r == nil || r.base == nil {
		return errors.New("order repository not initialised")
	}
	id := strings.TrimSpace(order.ID)
	if id == "" {
		return errors.New("order repository: order id is required")
	}

	updates := []firestore.Update{
		{Path: "status", Value: string(order.Status)},
		{Path: "statusHistory", Value: encodeHistory(order.StatusHistory)},
		{Path: "updatedAt", Value: order.UpdatedAt.UTC()},
	}
	if tracking := encodeTracking(order.Tracking); tracking != nil {
		updates = append(updates, firestore.Update{Path: "tracking", Value: tracking})
	} else {
		updates = append(updates, firestore.Update{Path: "tracking", Value: firestore.Delete})
	}

	return r.base.Update(ctx, id, updates)
}

// FindByID loads a single order.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.base == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	id := strings.TrimSpace(orderID)
	if id == "" {
		return domain.Order{}, errors.New("order repository: order id is required")
	}

	doc, err := r.base.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return decodeOrder(doc.ID, doc.Data)
}

func encodeOrder(order domain.Order) orderDocument {
	return orderDocument{
		OrderNumber:      order.OrderNumber,
		Currency:         order.Currency,
		Items:            encodeItems(order.Items),
		Pricing:          encodePricing(order.Pricing),
		Shipping:         encodeShipping(order.Shipping),
		Zone:             string(order.Zone),
		ShippingMethod:   string(order.ShippingMethod),
		DeliveryTimeSlot: string(order.DeliveryTimeSlot),
		DeliveryEarliest: order.Delivery.Earliest.UTC(),
		DeliveryLatest:   order.Delivery.Latest.UTC(),
		PaymentMethod:    string(order.Payment.Method),
		CardLast4:        order.Payment.CardLast4,
		Notes:            order.Notes,
		Status:           string(order.Status),
		StatusHistory:    encodeHistory(order.StatusHistory),
		Tracking:         encodeTracking(order.Tracking),
		PlacedAt:         order.PlacedAt.UTC(),
		UpdatedAt:        order.UpdatedAt.UTC(),
		Fingerprint:      order.PlacementFingerprint,
	}
}

func decodeOrder(id string, doc orderDocument) (domain.Order, error) {
	items, err := decodeItems(doc.Items)
	if err != nil {
		return domain.Order{}, fmt.Errorf("firestore orders decode %s: %w", id, err)
	}
	pricing, err := decodePricing(doc.Pricing)
	if err != nil {
		return domain.Order{}, fmt.Errorf("firestore orders decode %s: %w", id, err)
	}
	return domain.Order{
		ID:               id,
		OrderNumber:      doc.OrderNumber,
		Currency:         doc.Currency,
		Items:            items,
		Pricing:          pricing,
		Shipping:         decodeShipping(doc.Shipping),
		Zone:             domain.Zone(doc.Zone),
		ShippingMethod:   domain.ShippingMethod(doc.ShippingMethod),
		DeliveryTimeSlot: domain.TimeSlot(doc.DeliveryTimeSlot),
		Delivery: domain.DeliveryWindow{
			Earliest: doc.DeliveryEarliest.UTC(),
			Latest:   doc.DeliveryLatest.UTC(),
		},
		Payment: domain.PaymentSummary{
			Method:    domain.PaymentMethod(doc.PaymentMethod),
			CardLast4: doc.CardLast4,
		},
		Notes:         doc.Notes,
		Status:        domain.OrderStatus(doc.Status),
		StatusHistory: decodeHistory(doc.StatusHistory),
		Tracking:      decodeTracking(doc.Tracking),
		PlacedAt:      doc.PlacedAt.UTC(),
		UpdatedAt:     doc.UpdatedAt.UTC(),

		PlacementFingerprint: doc.Fingerprint,
	}, nil
}
