package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/platform/httpx"
	"github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/services"
)

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, errBodyTooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), status))
}

// writeServiceError maps service errors onto the JSON error envelope.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		validationErr *services.ValidationError
		couponErr     *services.CouponError
		methodErr     *services.InvalidMethodForZoneError
		transitionErr *services.InvalidTransitionError
		staleErr      *services.StaleQuoteError
	)

	switch {
	case errors.As(err, &validationErr):
		httpx.WriteError(ctx, w, httpx.NewError("validation_failed", "one or more fields are invalid", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"fields": validationErr.Fields}))
	case errors.As(err, &couponErr):
		details := map[string]any{"reason": string(couponErr.Reason), "code": couponErr.Code}
		if couponErr.MinSubtotal != nil {
			details["minSubtotal"] = domain.FormatMoney(*couponErr.MinSubtotal)
		}
		httpx.WriteError(ctx, w, httpx.NewError(string(couponErr.Reason), couponErr.Error(), http.StatusUnprocessableEntity).WithDetails(details))
	case errors.As(err, &methodErr):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_method_for_zone", methodErr.Error(), http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"zone": string(methodErr.Zone), "method": string(methodErr.Method)}))
	case errors.As(err, &transitionErr):
		message := transitionErr.Error()
		terminal := services.IsTerminalStatus(transitionErr.From)
		if terminal && len(services.AllowedTransitions(transitionErr.From)) == 0 {
			message = "order can no longer be modified"
		}
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", message, http.StatusConflict).
			WithDetails(map[string]any{
				"from":     string(transitionErr.From),
				"to":       string(transitionErr.To),
				"terminal": terminal,
			}))
	case errors.As(err, &staleErr):
		httpx.WriteError(ctx, w, httpx.NewError("stale_quote", "prices changed since the review step; confirm the new total", http.StatusConflict).
			WithDetails(map[string]any{
				"shownTotal":   domain.FormatMoney(staleErr.Shown),
				"currentTotal": domain.FormatMoney(domain.RoundMoney(staleErr.Current)),
			}))
	case errors.Is(err, services.ErrCheckoutDraftNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("draft_not_found", "checkout draft not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutDraftPlaced):
		httpx.WriteError(ctx, w, httpx.NewError("draft_placed", "checkout draft was already placed", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutInvalidEvent):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_step", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutPlacementInProgress):
		w.Header().Set("Retry-After", "1")
		httpx.WriteError(ctx, w, httpx.NewError("placement_in_progress", "order placement is already in progress", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutConflict), errors.Is(err, services.ErrOrderConflict):
		httpx.WriteError(ctx, w, httpx.NewError("conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutInvalidInput), errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCouponLookupUnavailable),
		errors.Is(err, services.ErrCheckoutUnavailable),
		errors.Is(err, services.ErrOrderUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "a dependency is unavailable; retry later", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "failed to process request", http.StatusInternalServerError))
	}
}
