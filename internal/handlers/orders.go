package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/httpx"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/observability"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/requestctx"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

const maxOrderReasonLength = 500

type trackingRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
	URL            string `json:"url"`
}

type statusTransitionRequest struct {
	Status         string           `json:"status"`
	ExpectedStatus string           `json:"expectedStatus"`
	Reason         string           `json:"reason"`
	Tracking       *trackingRequest `json:"tracking"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// OrderHandlers exposes placed orders and their lifecycle transitions.
type OrderHandlers struct {
	orders services.OrderService
}

// NewOrderHandlers constructs order handlers.
func NewOrderHandlers(orders services.OrderService) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// Routes registers endpoints under /orders.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Route("/{orderId}", func(o chi.Router) {
		o.Use(observability.ResourceMiddleware("order", "orderId"))
		o.Get("/", h.getOrder)
		o.Post("/status", h.transitionStatus)
		o.Post("/cancel", h.cancelOrder)
	})
}

func (h *OrderHandlers) available(w http.ResponseWriter, r *http.Request) bool {
	if h.orders == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("orders_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return false
	}
	return true
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	order, err := h.orders.GetOrder(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderPayload(displayTag(r), order))
}

func (h *OrderHandlers) transitionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req statusTransitionRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if strings.TrimSpace(req.Status) == "" {
		writeServiceError(ctx, w, &services.ValidationError{Fields: map[string]string{"status": "is required"}})
		return
	}
	reason, ok := normalizeReason(req.Reason)
	if !ok {
		writeServiceError(ctx, w, &services.ValidationError{Fields: map[string]string{"reason": "is too long"}})
		return
	}

	cmd := services.OrderStatusTransitionCommand{
		OrderID:      chi.URLParam(r, "orderId"),
		TargetStatus: req.Status,
		ActorID:      requestctx.Actor(ctx),
		Reason:       reason,
	}
	if expected := strings.TrimSpace(req.ExpectedStatus); expected != "" {
		cmd.ExpectedStatus = &expected
	}
	if req.Tracking != nil && strings.TrimSpace(req.Tracking.TrackingNumber) != "" {
		cmd.Tracking = &domain.TrackingInfo{
			Carrier:        strings.TrimSpace(req.Tracking.Carrier),
			TrackingNumber: strings.TrimSpace(req.Tracking.TrackingNumber),
			URL:            strings.TrimSpace(req.Tracking.URL),
		}
	}

	order, err := h.orders.TransitionStatus(ctx, cmd)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderPayload(displayTag(r), order))
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.available(w, r) {
		return
	}
	var req cancelOrderRequest
	if err := decodeBody(r, &req, true); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	reason, ok := normalizeReason(req.Reason)
	if !ok {
		writeServiceError(ctx, w, &services.ValidationError{Fields: map[string]string{"reason": "is too long"}})
		return
	}

	order, err := h.orders.Cancel(ctx, services.CancelOrderCommand{
		OrderID: chi.URLParam(r, "orderId"),
		ActorID: requestctx.Actor(ctx),
		Reason:  reason,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, newOrderPayload(displayTag(r), order))
}

func normalizeReason(raw string) (string, bool) {
	reason := strings.TrimSpace(raw)
	if len([]rune(reason)) > maxOrderReasonLength {
		return "", false
	}
	return reason, true
}
