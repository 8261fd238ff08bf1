package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderRepo "jamb/database/repository/order"
	userRepo "jamb/database/repository/user"
	"jamb/models"
	"jamb/services/payment"
	"jamb/services/pricing"
	"jamb/services/tasks"
	"jamb/utils"
)

var today = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC) // Monday

type memoryOrders struct {
	orders map[string]models.CompositeOrder
}

func (m *memoryOrders) Create(o *models.CompositeOrder) error {
	m.orders[o.ID] = *o
	return nil
}

func (m *memoryOrders) GetByID(id string) (*models.CompositeOrder, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, orderRepo.ErrOrderNotFound
	}
	return &o, nil
}

func (m *memoryOrders) ListByUser(userID string) ([]models.CompositeOrder, error) {
	out := []models.CompositeOrder{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryOrders) Update(o *models.CompositeOrder) error {
	if _, ok := m.orders[o.ID]; !ok {
		return orderRepo.ErrOrderNotFound
	}
	stored := *o
	stored.PaymentClientSecret = ""
	m.orders[o.ID] = stored
	return nil
}

func (m *memoryOrders) DeleteByUser(string) (int64, error) { return 0, nil }

type memoryUsers struct{}

func (memoryUsers) GetByID(id string) (*models.User, error) {
	return &models.User{ID: id, Email: id + "@example.com"}, nil
}
func (memoryUsers) GetByEmail(string) (*models.User, error) { return nil, userRepo.ErrUserNotFound }
func (memoryUsers) Create(*models.User) error                { return nil }
func (memoryUsers) Update(*models.User) error                { return nil }
func (memoryUsers) Delete(string) error                      { return nil }

// fixedEstimates prices every item at $100 of labor per unit and no materials.
type fixedEstimates struct{}

func (fixedEstimates) Calculate(context.Context, models.CalculateRequest) (*models.WorkEstimate, error) {
	return nil, nil
}
func (fixedEstimates) Estimate(context.Context, models.EstimateRequest) (*models.EstimateResponse, error) {
	return nil, nil
}
func (fixedEstimates) Calendar(int) ([]models.CalendarDay, error) { return nil, nil }
func (fixedEstimates) PriceItems(_ context.Context, items []models.EstimateItem) ([]models.WorkEstimate, error) {
	if len(items) == 0 {
		return nil, utils.NewValidationError("at least one work is required")
	}
	var out []models.WorkEstimate
	for _, it := range items {
		labor := utils.RoundCents(100 * it.Quantity)
		out = append(out, models.WorkEstimate{WorkCode: it.WorkCode, Quantity: it.Quantity, LaborCost: labor, AdjustedLabor: labor, Total: labor})
	}
	return out, nil
}

type fakePayments struct {
	created   int
	updated   []float64
	cancelled []string
	fail      bool
}

func (f *fakePayments) CreateIntent(_ context.Context, o *models.CompositeOrder, _ string) (*payment.Intent, error) {
	if f.fail {
		return nil, errors.New("card network down")
	}
	f.created++
	return &payment.Intent{ID: "pi_" + o.ID, ClientSecret: "secret_" + o.ID}, nil
}

func (f *fakePayments) UpdateAmount(_ context.Context, _ string, total float64) error {
	f.updated = append(f.updated, total)
	return nil
}

func (f *fakePayments) CancelIntent(_ context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

type recordingQueue struct {
	tasks []*asynq.Task
	fail  bool
}

func (q *recordingQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.fail {
		return nil, errors.New("redis down")
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func newOrderService(t *testing.T) (*DefaultOrderService, *memoryOrders, *fakePayments, *recordingQueue) {
	t.Helper()
	calc, err := pricing.NewCalculator(0.15, 0.05, nil)
	require.NoError(t, err)
	calc.Now = func() time.Time { return today }

	orders := &memoryOrders{orders: map[string]models.CompositeOrder{}}
	payments := &fakePayments{}
	queue := &recordingQueue{}
	n := 0
	svc := &DefaultOrderService{
		Orders:     orders,
		Users:      memoryUsers{},
		Estimates:  fixedEstimates{},
		Calculator: calc,
		Payments:   payments,
		Queue:      queue,
		NewID: func() string {
			n++
			return "o-" + string(rune('0'+n))
		},
		NewCode: func() string { return "JMB-TEST01" },
		Now:     func() time.Time { return today },
	}
	return svc, orders, payments, queue
}

func placeRequest() models.PlaceOrderRequest {
	return models.PlaceOrderRequest{
		Address: models.Address{Street: "1 Main St", City: "Austin", State: "tx", Zip: "78701"},
		Date:    "2025-06-10",
		Items: []models.EstimateItem{
			{WorkCode: "1-1-1", Quantity: 3},
			{WorkCode: "1-2-1", Quantity: 1},
		},
		Photos: []string{"https://storage.googleapis.com/jamb/photos/a.jpg"},
	}
}

func TestPlaceOrder(t *testing.T) {
	svc, orders, payments, queue := newOrderService(t)

	o, err := svc.PlaceOrder(context.Background(), "u-1", placeRequest())
	require.NoError(t, err)

	assert.Equal(t, "JMB-TEST01", o.Code)
	assert.Equal(t, models.OrderPending, o.Status)
	assert.Equal(t, "TX", o.Address.State)
	assert.Equal(t, "US", o.Address.Country)
	assert.Equal(t, 1.0, o.TimeCoefficient)
	assert.Equal(t, 400.0, o.Estimate.AdjustedLabor)
	assert.Equal(t, 60.0, o.Estimate.ServiceFees)
	assert.Equal(t, 25.0, o.Estimate.Tax)
	assert.Equal(t, 485.0, o.Estimate.Total)

	assert.Equal(t, 1, payments.created)
	assert.Equal(t, "pi_o-1", o.PaymentIntentID)
	assert.Equal(t, "secret_o-1", o.PaymentClientSecret)
	assert.Equal(t, "pi_o-1", orders.orders["o-1"].PaymentIntentID)
	assert.Empty(t, orders.orders["o-1"].PaymentClientSecret)

	require.Len(t, queue.tasks, 2)
	assert.Equal(t, tasks.TypeOrderEmail, queue.tasks[0].Type())
	assert.Equal(t, tasks.TypePushNotify, queue.tasks[1].Type())
	var payload models.OrderEmailPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, models.EmailOrderConfirmation, payload.Kind)
}

func TestPlaceOrderSurvivesSideEffectFailures(t *testing.T) {
	svc, orders, payments, queue := newOrderService(t)
	payments.fail = true
	queue.fail = true

	o, err := svc.PlaceOrder(context.Background(), "u-1", placeRequest())
	require.NoError(t, err)
	assert.Empty(t, o.PaymentIntentID)
	assert.Contains(t, orders.orders, o.ID)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc, _, _, _ := newOrderService(t)
	ctx := context.Background()

	req := placeRequest()
	req.Address.State = "XX"
	_, err := svc.PlaceOrder(ctx, "u-1", req)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	req = placeRequest()
	req.Date = "2025-05-30"
	_, err = svc.PlaceOrder(ctx, "u-1", req)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	req = placeRequest()
	req.Photos = []string{"file:///etc/passwd"}
	_, err = svc.PlaceOrder(ctx, "u-1", req)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	req = placeRequest()
	req.Address.Street = " "
	_, err = svc.PlaceOrder(ctx, "u-1", req)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))

	req = placeRequest()
	req.Items = nil
	_, err = svc.PlaceOrder(ctx, "u-1", req)
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestGetOrderOwnership(t *testing.T) {
	svc, _, _, _ := newOrderService(t)
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, "u-1", placeRequest())
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, "u-2", o.ID)
	assert.Equal(t, utils.KindForbidden, utils.KindOf(err))

	_, err = svc.GetOrder(ctx, "u-1", "missing")
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	got, err := svc.GetOrder(ctx, "u-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Code, got.Code)

	list, err := svc.ListOrders(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestChangeDateRedistributesLabor(t *testing.T) {
	svc, _, payments, queue := newOrderService(t)
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, "u-1", placeRequest())
	require.NoError(t, err)
	queue.tasks = nil

	// Tuesday, one day out.
	moved, err := svc.ChangeDate(ctx, "u-1", o.ID, "2025-06-03")
	require.NoError(t, err)

	assert.Equal(t, "2025-06-03", moved.Date)
	assert.Equal(t, 1.5, moved.TimeCoefficient)
	assert.Equal(t, 600.0, moved.Estimate.AdjustedLabor)
	assert.Equal(t, 200.0, moved.Estimate.Adjustment)
	assert.Equal(t, 450.0, moved.Works[0].AdjustedLabor)
	assert.Equal(t, 150.0, moved.Works[1].AdjustedLabor)
	assert.Equal(t, o.Estimate.TaxRate, moved.Estimate.TaxRate)

	assert.Equal(t, []float64{moved.Estimate.Total}, payments.updated)
	require.Len(t, queue.tasks, 2)
	var payload models.OrderEmailPayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
	assert.Equal(t, models.EmailOrderUpdated, payload.Kind)
}

func TestChangeDateRequiresOpenOrder(t *testing.T) {
	svc, _, _, _ := newOrderService(t)
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, "u-1", placeRequest())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, o.ID, models.OrderConfirmed)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o.ID, models.OrderInProgress)
	require.NoError(t, err)

	_, err = svc.ChangeDate(ctx, "u-1", o.ID, "2025-06-20")
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))

	_, err = svc.CancelOrder(ctx, "u-1", o.ID)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestCancelOrderCancelsPayment(t *testing.T) {
	svc, _, payments, _ := newOrderService(t)
	ctx := context.Background()
	o, err := svc.PlaceOrder(ctx, "u-1", placeRequest())
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(ctx, "u-1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, []string{"pi_o-1"}, payments.cancelled)

	_, err = svc.CancelOrder(ctx, "u-1", o.ID)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(models.OrderPending, models.OrderConfirmed))
	assert.True(t, CanTransition(models.OrderConfirmed, models.OrderCancelled))
	assert.True(t, CanTransition(models.OrderInProgress, models.OrderCompleted))
	assert.False(t, CanTransition(models.OrderPending, models.OrderCompleted))
	assert.False(t, CanTransition(models.OrderCompleted, models.OrderCancelled))
	assert.False(t, CanTransition(models.OrderCancelled, models.OrderPending))

	svc, _, _, _ := newOrderService(t)
	_, err := svc.UpdateStatus(context.Background(), "o-1", "archived")
	assert.Equal(t, utils.KindValidation, utils.KindOf(err))
}

func TestNewOrderCode(t *testing.T) {
	code := NewOrderCode()
	assert.Regexp(t, `^JMB-[A-HJ-NP-Z2-9]{6}$`, code)
}
