package cron

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	orderRepo "jamb/database/repository/order"
	userRepo "jamb/database/repository/user"
	"jamb/models"
	"jamb/services/email"
	"jamb/services/tasks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type orderStore struct {
	orders map[string]models.CompositeOrder
}

func (s *orderStore) Create(*models.CompositeOrder) error { return nil }
func (s *orderStore) GetByID(id string) (*models.CompositeOrder, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, orderRepo.ErrOrderNotFound
	}
	return &o, nil
}
func (s *orderStore) ListByUser(string) ([]models.CompositeOrder, error) { return nil, nil }
func (s *orderStore) Update(*models.CompositeOrder) error                { return nil }
func (s *orderStore) DeleteByUser(string) (int64, error)                 { return 0, nil }

type userStore struct {
	users map[string]models.User
}

func (s *userStore) GetByID(id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, userRepo.ErrUserNotFound
	}
	return &u, nil
}
func (s *userStore) GetByEmail(string) (*models.User, error) { return nil, userRepo.ErrUserNotFound }
func (s *userStore) Create(*models.User) error               { return nil }
func (s *userStore) Update(*models.User) error               { return nil }
func (s *userStore) Delete(string) error                     { return nil }

type outbox struct {
	sent []models.EmailMessage
	err  error
}

func (o *outbox) Send(_ context.Context, msg models.EmailMessage) error {
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

type pushes struct {
	users []string
}

func (p *pushes) SendUserPushNotification(_ context.Context, userID, _, _ string, _ map[string]string) error {
	p.users = append(p.users, userID)
	return nil
}

type runner struct {
	plans []*models.ImportPlan
}

func (r *runner) Run(_ context.Context, plan *models.ImportPlan) (models.ImportReport, error) {
	r.plans = append(r.plans, plan)
	return models.ImportReport{Fetched: 1, Upserted: 1}, nil
}

func newHandlers(t *testing.T) (*Handlers, *outbox) {
	t.Helper()
	emails, err := email.NewEmailService()
	require.NoError(t, err)
	box := &outbox{}
	return &Handlers{
		Orders: &orderStore{orders: map[string]models.CompositeOrder{
			"o-1": {ID: "o-1", Code: "JMB-AB23CD", UserID: "u-1", Date: "2025-06-20", Status: models.OrderPending},
		}},
		Users:  &userStore{users: map[string]models.User{"u-1": {ID: "u-1", Email: "ana@example.com", Name: "Ana"}}},
		Emails: emails,
		Mailer: box,
	}, box
}

func emailTask(t *testing.T, p models.OrderEmailPayload) *asynq.Task {
	t.Helper()
	task, _, err := tasks.NewOrderEmailTask(p)
	require.NoError(t, err)
	return task
}

func TestOrderEmailJob(t *testing.T) {
	h, box := newHandlers(t)
	mux := NewServeMux(h)

	err := mux.ProcessTask(context.Background(), emailTask(t, models.OrderEmailPayload{
		Kind: models.EmailOrderConfirmation, OrderID: "o-1", UserID: "u-1",
	}))
	require.NoError(t, err)
	require.Len(t, box.sent, 1)
	assert.Equal(t, "ana@example.com", box.sent[0].To)
	assert.Contains(t, box.sent[0].Subject, "JMB-AB23CD")
}

func TestOrderEmailJobSkipsRetryForMissingOrder(t *testing.T) {
	h, box := newHandlers(t)

	err := h.HandleOrderEmail(context.Background(), emailTask(t, models.OrderEmailPayload{
		Kind: models.EmailOrderConfirmation, OrderID: "gone", UserID: "u-1",
	}))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, box.sent)

	err = h.HandleOrderEmail(context.Background(), asynq.NewTask(tasks.TypeOrderEmail, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestOrderEmailJobRetriesSendFailures(t *testing.T) {
	h, box := newHandlers(t)
	box.err = errors.New("connection refused")

	err := h.HandleOrderEmail(context.Background(), emailTask(t, models.OrderEmailPayload{
		Kind: models.EmailOrderUpdated, OrderID: "o-1", UserID: "u-1",
	}))
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestOrderEmailJobWithoutMailer(t *testing.T) {
	h, _ := newHandlers(t)
	h.Mailer = nil
	err := h.HandleOrderEmail(context.Background(), emailTask(t, models.OrderEmailPayload{OrderID: "o-1", UserID: "u-1"}))
	assert.NoError(t, err)
}

func TestPushJob(t *testing.T) {
	h, _ := newHandlers(t)
	p := &pushes{}
	h.Push = p

	task, _, err := tasks.NewPushTask(models.PushPayload{UserID: "u-1", Title: "Order placed"})
	require.NoError(t, err)
	require.NoError(t, NewServeMux(h).ProcessTask(context.Background(), task))
	assert.Equal(t, []string{"u-1"}, p.users)
}

func TestImportJobUsesTaskPlanOrDefault(t *testing.T) {
	dir := t.TempDir()
	planFile := filepath.Join(dir, "plan.yaml")
	require.NoError(t, os.WriteFile(planFile, []byte(`
entries:
  - work_code: "1-1-1"
    section: finishing
    search_term: interior paint
`), 0o600))

	r := &runner{}
	h := &Handlers{Importer: r, PlanFile: planFile}

	task, _, err := tasks.NewImportTask("")
	require.NoError(t, err)
	require.NoError(t, h.HandleImport(context.Background(), task))
	require.Len(t, r.plans, 1)
	assert.Equal(t, "1-1-1", r.plans[0].Entries[0].WorkCode)

	task, _, err = tasks.NewImportTask(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.ErrorIs(t, h.HandleImport(context.Background(), task), asynq.SkipRetry)
}

type queue struct {
	tasks []*asynq.Task
}

func (q *queue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "t-1"}, nil
}

func TestScheduler(t *testing.T) {
	_, err := StartScheduler("not a spec", "plan.yaml", &queue{})
	require.Error(t, err)

	q := &queue{}
	c, err := StartScheduler("0 3 * * *", "plan.yaml", q)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()

	enqueueImport(q, "plan.yaml")
	require.Len(t, q.tasks, 1)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &payload))
	assert.Equal(t, "plan.yaml", payload["plan"])
}
