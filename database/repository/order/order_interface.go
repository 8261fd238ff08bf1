package orderRepo

import (
	"errors"

	"jamb/models"
)

// ErrOrderNotFound is returned when no order matches a lookup.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines data access for composite orders.
type OrderRepository interface {
	Create(order *models.CompositeOrder) error
	GetByID(id string) (*models.CompositeOrder, error)
	ListByUser(userID string) ([]models.CompositeOrder, error)
	// Update replaces the stored order.
	Update(order *models.CompositeOrder) error
	// DeleteByUser removes every order of a user and returns how many were removed.
	DeleteByUser(userID string) (int64, error)
}
