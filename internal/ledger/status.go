package ledger

import "github.com/smartsupply/delivery-app/internal/models"

// Editable reports whether an order in the given status may still be
// amended. Only pre-delivery statuses qualify.
func Editable(status string) bool {
	switch status {
	case models.StatusPending, models.StatusAssigned, models.StatusInProgress:
		return true
	}
	return false
}

// Terminal reports whether a status permits no further ledger-affecting
// transitions.
func Terminal(status string) bool {
	switch status {
	case models.StatusDelivered, models.StatusCompleted, models.StatusCancelled:
		return true
	}
	return false
}

// ValidType reports whether t is a known order type.
func ValidType(t string) bool {
	switch t {
	case models.TypeDelivery, models.TypeWalkIn, models.TypeClearBill:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
		return true
	}
	return false
}

// InitialStatus returns the creation status for an order type. A DELIVERY
// order starts ASSIGNED (a rider is mandatory at creation), a WALKIN order
// starts CREATED, and a CLEARBILL order is born COMPLETED because it is
// created and finalized in the same transaction.
func InitialStatus(orderType string) string {
	switch orderType {
	case models.TypeWalkIn:
		return models.StatusCreated
	case models.TypeClearBill:
		return models.StatusCompleted
	default:
		return models.StatusAssigned
	}
}

// CanDeliver reports whether a DELIVERY order in the given status may be
// delivered. Any non-terminal status qualifies.
func CanDeliver(orderType, status string) bool {
	return orderType == models.TypeDelivery && !Terminal(status)
}

// CanCompleteWalkIn reports whether a walk-in order may be completed.
func CanCompleteWalkIn(orderType, status string) bool {
	return orderType == models.TypeWalkIn && status == models.StatusCreated
}

// CanCancel reports whether an order in the given status may be cancelled.
// Terminal orders stay as they are; a delivered or completed order must be
// corrected through a clear-bill, never by cancellation.
func CanCancel(status string) bool {
	return !Terminal(status)
}
