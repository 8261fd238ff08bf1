package order

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	orderRepo "jamb/database/repository/order"
	"jamb/metrics"
	"jamb/models"
	"jamb/services/storage"
	"jamb/services/tasks"
	"jamb/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultOrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultOrderService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *DefaultOrderService) newCode() string {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return NewOrderCode()
}

func validatePlaceOrder(req models.PlaceOrderRequest) error {
	a := req.Address
	if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" || strings.TrimSpace(a.Zip) == "" {
		return utils.NewValidationError("street, city and zip are required")
	}
	if len(req.Description) > 2000 {
		return utils.NewValidationError("description must be at most 2000 characters")
	}
	if len(req.Photos) > storage.MaxPhotos {
		return utils.NewValidationError("at most %d photos can be attached", storage.MaxPhotos)
	}
	for _, p := range req.Photos {
		u, err := url.Parse(p)
		if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
			return utils.NewValidationError("photo %q is not a valid URL", p)
		}
	}
	return nil
}

// PlaceOrder prices the request server-side and stores it. Payment, e-mail and push
// failures are logged and never fail the order.
func (s *DefaultOrderService) PlaceOrder(ctx context.Context, userID string, req models.PlaceOrderRequest) (*models.CompositeOrder, error) {
	logger := utils.GetLogger()
	if err := validatePlaceOrder(req); err != nil {
		return nil, err
	}

	taxRate, err := s.Calculator.TaxRate(req.Address.State)
	if err != nil {
		return nil, err
	}
	coef, err := s.Calculator.Coefficient(req.Date)
	if err != nil {
		return nil, err
	}
	priced, err := s.Estimates.PriceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	works, est, err := s.Calculator.Aggregate(priced, coef, taxRate)
	if err != nil {
		return nil, err
	}

	address := req.Address
	address.State = strings.ToUpper(strings.TrimSpace(address.State))
	if address.Country == "" {
		address.Country = "US"
	}
	o := &models.CompositeOrder{
		ID:              s.newID(),
		Code:            s.newCode(),
		UserID:          userID,
		Address:         address,
		Description:     strings.TrimSpace(req.Description),
		Date:            req.Date,
		TimeCoefficient: coef,
		Works:           works,
		Estimate:        est,
		Photos:          req.Photos,
		Status:          models.OrderPending,
	}
	if err := s.Orders.Create(o); err != nil {
		return nil, err
	}
	metrics.RecordEstimate("order")
	metrics.RecordOrder(est.Total)
	logger.Info("Order placed", zap.String("orderID", o.ID), zap.String("code", o.Code), zap.Float64("total", est.Total))

	if s.Payments != nil {
		s.attachPayment(ctx, o)
	}
	s.notify(ctx, o, models.EmailOrderConfirmation, "Order received", fmt.Sprintf("We received your order %s.", o.Code))
	return o, nil
}

func (s *DefaultOrderService) attachPayment(ctx context.Context, o *models.CompositeOrder) {
	logger := utils.GetLogger()
	email := ""
	if u, err := s.Users.GetByID(o.UserID); err == nil {
		email = u.Email
	}
	intent, err := s.Payments.CreateIntent(ctx, o, email)
	if err != nil {
		logger.Error("Failed to create payment intent", zap.String("orderID", o.ID), zap.Error(err))
		return
	}
	o.PaymentIntentID = intent.ID
	if err := s.Orders.Update(o); err != nil {
		logger.Error("Failed to store payment intent", zap.String("orderID", o.ID), zap.Error(err))
	}
	o.PaymentClientSecret = intent.ClientSecret
}

// notify queues the e-mail and push jobs of an order event.
func (s *DefaultOrderService) notify(ctx context.Context, o *models.CompositeOrder, kind models.OrderEmailKind, title, body string) {
	if s.Queue == nil {
		return
	}
	logger := utils.GetLogger()

	task, opts, err := tasks.NewOrderEmailTask(models.OrderEmailPayload{Kind: kind, OrderID: o.ID, UserID: o.UserID})
	if err := tasks.Enqueue(ctx, s.Queue, task, opts, err); err != nil {
		logger.Error("Failed to queue order email", zap.String("orderID", o.ID), zap.Error(err))
	}

	task, opts, err = tasks.NewPushTask(models.PushPayload{
		UserID: o.UserID,
		Title:  title,
		Body:   body,
		Data:   map[string]string{"type": "order", "orderId": o.ID, "status": string(o.Status)},
	})
	if err := tasks.Enqueue(ctx, s.Queue, task, opts, err); err != nil {
		logger.Error("Failed to queue order push", zap.String("orderID", o.ID), zap.Error(err))
	}
}

func (s *DefaultOrderService) ListOrders(_ context.Context, userID string) ([]models.CompositeOrder, error) {
	return s.Orders.ListByUser(userID)
}

func (s *DefaultOrderService) load(orderID string) (*models.CompositeOrder, error) {
	o, err := s.Orders.GetByID(orderID)
	if errors.Is(err, orderRepo.ErrOrderNotFound) {
		return nil, utils.NewNotFoundError("order %s not found", orderID)
	}
	return o, err
}

func (s *DefaultOrderService) GetOrder(_ context.Context, userID, orderID string) (*models.CompositeOrder, error) {
	o, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, utils.NewForbiddenError("order %s belongs to another account", orderID)
	}
	return o, nil
}

// ChangeDate moves an order to a new date, repricing labor for the new date and
// spreading the new surcharge or discount over the works.
func (s *DefaultOrderService) ChangeDate(ctx context.Context, userID, orderID, date string) (*models.CompositeOrder, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !isReschedulable(o.Status) {
		return nil, utils.NewConflictError("an order that is %s cannot be rescheduled", o.Status)
	}
	if o.Date == date {
		return o, nil
	}

	coef, err := s.Calculator.Coefficient(date)
	if err != nil {
		return nil, err
	}
	works, est, err := s.Calculator.RedistributeForDate(*o, coef)
	if err != nil {
		return nil, err
	}
	previousTotal := o.Estimate.Total
	o.Date = date
	o.TimeCoefficient = coef
	o.Works = works
	o.Estimate = est
	if err := s.Orders.Update(o); err != nil {
		return nil, err
	}
	metrics.RecordEstimate("reschedule")
	utils.GetLogger().Info("Order rescheduled",
		zap.String("orderID", o.ID), zap.String("date", date),
		zap.Float64("previousTotal", previousTotal), zap.Float64("total", est.Total))

	if s.Payments != nil && o.PaymentIntentID != "" && est.Total != previousTotal {
		if err := s.Payments.UpdateAmount(ctx, o.PaymentIntentID, est.Total); err != nil {
			utils.GetLogger().Error("Failed to update payment amount", zap.String("orderID", o.ID), zap.Error(err))
		}
	}
	s.notify(ctx, o, models.EmailOrderUpdated, "Order rescheduled", fmt.Sprintf("Order %s is now scheduled for %s.", o.Code, date))
	return o, nil
}

func (s *DefaultOrderService) CancelOrder(ctx context.Context, userID, orderID string) (*models.CompositeOrder, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, models.OrderCancelled) {
		return nil, utils.NewConflictError("an order that is %s cannot be cancelled", o.Status)
	}
	return s.transition(ctx, o, models.OrderCancelled)
}

func (s *DefaultOrderService) UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.CompositeOrder, error) {
	if !IsKnownStatus(status) {
		return nil, utils.NewValidationError("unknown status %q", status)
	}
	o, err := s.load(orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, status) {
		return nil, utils.NewConflictError("cannot move order from %s to %s", o.Status, status)
	}
	return s.transition(ctx, o, status)
}

func (s *DefaultOrderService) transition(ctx context.Context, o *models.CompositeOrder, status models.OrderStatus) (*models.CompositeOrder, error) {
	o.Status = status
	if err := s.Orders.Update(o); err != nil {
		return nil, err
	}
	utils.GetLogger().Info("Order status changed", zap.String("orderID", o.ID), zap.String("status", string(status)))

	if status == models.OrderCancelled && s.Payments != nil && o.PaymentIntentID != "" {
		if err := s.Payments.CancelIntent(ctx, o.PaymentIntentID); err != nil {
			utils.GetLogger().Error("Failed to cancel payment intent", zap.String("orderID", o.ID), zap.Error(err))
		}
	}
	s.notify(ctx, o, models.EmailOrderUpdated, "Order update", fmt.Sprintf("Order %s is now %s.", o.Code, strings.ReplaceAll(string(status), "_", " ")))
	return o, nil
}
