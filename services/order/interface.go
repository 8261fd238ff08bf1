package order

import (
	"context"
	"time"

	"jamb/database/repository"
	"jamb/models"
	"jamb/services/estimate"
	"jamb/services/payment"
	"jamb/services/pricing"
	"jamb/services/tasks"
)

// OrderService manages composite orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, req models.PlaceOrderRequest) (*models.CompositeOrder, error)
	ListOrders(ctx context.Context, userID string) ([]models.CompositeOrder, error)
	GetOrder(ctx context.Context, userID, orderID string) (*models.CompositeOrder, error)
	ChangeDate(ctx context.Context, userID, orderID, date string) (*models.CompositeOrder, error)
	CancelOrder(ctx context.Context, userID, orderID string) (*models.CompositeOrder, error)
	// UpdateStatus is the administrative transition of an order.
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.CompositeOrder, error)
}

// DefaultOrderService implements OrderService. Payments and Queue are optional.
type DefaultOrderService struct {
	Orders     repository.OrderRepository
	Users      repository.UserRepository
	Estimates  estimate.EstimateService
	Calculator *pricing.Calculator
	Payments   payment.PaymentService
	Queue      tasks.Enqueuer

	NewID   func() string
	NewCode func() string
	Now     func() time.Time
}
