package payment

import (
	"context"
	"fmt"

	"jamb/models"
	"jamb/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Intent is the client-facing part of a created payment intent.
type Intent struct {
	ID           string
	ClientSecret string
}

// PaymentService creates and maintains payment intents of orders.
type PaymentService interface {
	CreateIntent(ctx context.Context, order *models.CompositeOrder, receiptEmail string) (*Intent, error)
	UpdateAmount(ctx context.Context, intentID string, total float64) error
	CancelIntent(ctx context.Context, intentID string) error
}

// StripePaymentService implements PaymentService with Stripe PaymentIntents.
type StripePaymentService struct {
	api      *client.API
	currency string
}

// NewStripePaymentService returns nil when no key is configured, which disables payments.
func NewStripePaymentService(key, currency string, backends *stripe.Backends) *StripePaymentService {
	if key == "" {
		return nil
	}
	return &StripePaymentService{api: client.New(key, backends), currency: currency}
}

func (s *StripePaymentService) CreateIntent(ctx context.Context, order *models.CompositeOrder, receiptEmail string) (*Intent, error) {
	amount := utils.ToCents(order.Estimate.Total)
	if amount <= 0 {
		return nil, utils.NewValidationError("order %s has nothing to pay", order.Code)
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(s.currency),
		Description: stripe.String(fmt.Sprintf("Jamb order %s", order.Code)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + order.ID)
	params.AddMetadata("order_id", order.ID)
	params.AddMetadata("order_code", order.Code)
	params.AddMetadata("user_id", order.UserID)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, utils.NewUpstreamError("failed to create payment intent", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *StripePaymentService) UpdateAmount(ctx context.Context, intentID string, total float64) error {
	params := &stripe.PaymentIntentParams{Amount: stripe.Int64(utils.ToCents(total))}
	params.Context = ctx
	if _, err := s.api.PaymentIntents.Update(intentID, params); err != nil {
		return utils.NewUpstreamError("failed to update payment intent", err)
	}
	return nil
}

func (s *StripePaymentService) CancelIntent(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if _, err := s.api.PaymentIntents.Cancel(intentID, params); err != nil {
		return utils.NewUpstreamError("failed to cancel payment intent", err)
	}
	return nil
}
