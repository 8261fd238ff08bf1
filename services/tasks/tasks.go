package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jamb/models"

	"github.com/hibiken/asynq"
)

const (
	TypeOrderEmail    = "order:email"
	TypePushNotify    = "order:push"
	TypeImportRefresh = "materials:import"

	QueueDefault = "default"
	QueueImports = "imports"
)

// Enqueuer is the subset of the asynq client used by services.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewOrderEmailTask builds the job that renders and sends an order e-mail.
func NewOrderEmailTask(payload models.OrderEmailPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return asynq.NewTask(TypeOrderEmail, b), opts, nil
}

// NewPushTask builds the job that delivers a push notification.
func NewPushTask(payload models.PushPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(15 * time.Second),
	}
	return asynq.NewTask(TypePushNotify, b), opts, nil
}

// NewImportTask builds the job that refreshes finishing materials from BigBox.
func NewImportTask(planFile string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(map[string]string{"plan": planFile})
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueImports),
		asynq.MaxRetry(1),
		asynq.Timeout(30 * time.Minute),
		asynq.Unique(time.Hour),
	}
	return asynq.NewTask(TypeImportRefresh, b), opts, nil
}

// ImportPlanOf extracts the plan path of an import task.
func ImportPlanOf(task *asynq.Task) (string, error) {
	var p map[string]string
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return "", fmt.Errorf("invalid import payload: %w", err)
	}
	return p["plan"], nil
}

// Enqueue submits a task returned by one of the constructors above.
func Enqueue(ctx context.Context, q Enqueuer, task *asynq.Task, opts []asynq.Option, err error) error {
	if err != nil {
		return fmt.Errorf("failed to build task: %w", err)
	}
	if _, err := q.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	return nil
}
