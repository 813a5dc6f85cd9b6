package services

import (
	"slices"
	"strings"
	"time"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// Forward moves may skip stages. cancelled is open to every status before delivered;
// returned and refunded only follow delivered.
var orderStateTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending: {
		domain.OrderStatusConfirmed, domain.OrderStatusProcessing, domain.OrderStatusShipped,
		domain.OrderStatusOutForDelivery, domain.OrderStatusDelivered, domain.OrderStatusCancelled,
	},
	domain.OrderStatusConfirmed: {
		domain.OrderStatusProcessing, domain.OrderStatusShipped, domain.OrderStatusOutForDelivery,
		domain.OrderStatusDelivered, domain.OrderStatusCancelled,
	},
	domain.OrderStatusProcessing: {
		domain.OrderStatusShipped, domain.OrderStatusOutForDelivery, domain.OrderStatusDelivered,
		domain.OrderStatusCancelled,
	},
	domain.OrderStatusShipped: {
		domain.OrderStatusOutForDelivery, domain.OrderStatusDelivered, domain.OrderStatusCancelled,
	},
	domain.OrderStatusOutForDelivery: {
		domain.OrderStatusDelivered, domain.OrderStatusCancelled,
	},
	domain.OrderStatusDelivered: {
		domain.OrderStatusReturned, domain.OrderStatusRefunded,
	},
}

var terminalStatuses = []domain.OrderStatus{
	domain.OrderStatusDelivered,
	domain.OrderStatusCancelled,
	domain.OrderStatusReturned,
	domain.OrderStatusRefunded,
}

// ParseOrderStatus normalises raw input, accepting underscores for hyphens.
func ParseOrderStatus(raw string) (domain.OrderStatus, bool) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	status := domain.OrderStatus(normalized)
	if status == "canceled" {
		status = domain.OrderStatusCancelled
	}
	if _, ok := orderStateTransitions[status]; ok {
		return status, true
	}
	if slices.Contains(terminalStatuses, status) {
		return status, true
	}
	return "", false
}

// IsTerminalStatus reports whether status ends the forward lifecycle. delivered is terminal for
// fulfilment but still admits returned and refunded.
func IsTerminalStatus(status domain.OrderStatus) bool {
	return slices.Contains(terminalStatuses, status)
}

// CanTransition reports whether from → to is allowed. Same-status moves are not transitions.
func CanTransition(from, to domain.OrderStatus) bool {
	return slices.Contains(orderStateTransitions[from], to)
}

// AllowedTransitions lists the statuses reachable from status.
func AllowedTransitions(status domain.OrderStatus) []domain.OrderStatus {
	return slices.Clone(orderStateTransitions[status])
}

// StatusChange describes a requested lifecycle move.
type StatusChange struct {
	Target   domain.OrderStatus
	At       time.Time
	Actor    string
	Reason   string
	Tracking *domain.TrackingInfo
}

// ApplyStatusTransition returns a copy of order moved to change.Target with a new history entry.
// History timestamps never go backwards: a clock behind the last entry is clamped to it.
func ApplyStatusTransition(order domain.Order, change StatusChange) (domain.Order, error) {
	current := order.Status
	if !CanTransition(current, change.Target) {
		return order, &InvalidTransitionError{From: current, To: change.Target}
	}

	at := change.At
	if n := len(order.StatusHistory); n > 0 && at.Before(order.StatusHistory[n-1].At) {
		at = order.StatusHistory[n-1].At
	}

	next := order.Clone()
	next.Status = change.Target
	next.StatusHistory = append(next.StatusHistory, domain.StatusEntry{
		Status: change.Target,
		At:     at,
		Actor:  strings.TrimSpace(change.Actor),
		Reason: strings.TrimSpace(change.Reason),
	})
	if change.Tracking != nil {
		tracking := *change.Tracking
		next.Tracking = &tracking
	}
	next.UpdatedAt = at
	return next, nil
}

// StageProgress returns index(status)/(len(stages)-1) for forward statuses and false otherwise.
func StageProgress(status domain.OrderStatus) (float64, bool) {
	idx := slices.Index(domain.OrderStages, status)
	if idx < 0 {
		return 0, false
	}
	return float64(idx) / float64(len(domain.OrderStages)-1), true
}

// OrderProgress derives display progress. Side branches report the last forward stage reached.
func OrderProgress(order domain.Order) float64 {
	if p, ok := StageProgress(order.Status); ok {
		return p
	}
	for i := len(order.StatusHistory) - 1; i >= 0; i-- {
		if p, ok := StageProgress(order.StatusHistory[i].Status); ok {
			return p
		}
	}
	return 0
}
