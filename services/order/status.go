package order

import "jamb/models"

var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderConfirmed, models.OrderCancelled},
	models.OrderConfirmed:  {models.OrderInProgress, models.OrderCancelled},
	models.OrderInProgress: {models.OrderCompleted},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsKnownStatus reports whether s is a valid order status.
func IsKnownStatus(s models.OrderStatus) bool {
	switch s {
	case models.OrderPending, models.OrderConfirmed, models.OrderInProgress, models.OrderCompleted, models.OrderCancelled:
		return true
	}
	return false
}

// isReschedulable reports whether the customer may still change the date or cancel.
func isReschedulable(s models.OrderStatus) bool {
	return s == models.OrderPending || s == models.OrderConfirmed
}
