package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamb/models"
)

type recordingQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *recordingQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "t-1", Type: task.Type()}, nil
}

func TestOrderEmailTaskRoundTrip(t *testing.T) {
	q := &recordingQueue{}
	task, opts, err := NewOrderEmailTask(models.OrderEmailPayload{Kind: models.EmailOrderConfirmation, OrderID: "o-1", UserID: "u-1"})
	require.NoError(t, Enqueue(context.Background(), q, task, opts, err))

	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeOrderEmail, q.tasks[0].Type())

	var payload models.OrderEmailPayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &payload))
	assert.Equal(t, "o-1", payload.OrderID)
	assert.Equal(t, models.EmailOrderConfirmation, payload.Kind)
}

func TestImportTaskPlan(t *testing.T) {
	task, _, err := NewImportTask("plans/materials.yaml")
	require.NoError(t, err)

	plan, err := ImportPlanOf(task)
	require.NoError(t, err)
	assert.Equal(t, "plans/materials.yaml", plan)

	_, err = ImportPlanOf(asynq.NewTask(TypeImportRefresh, []byte("{")))
	require.Error(t, err)
}

func TestEnqueueErrors(t *testing.T) {
	q := &recordingQueue{err: errors.New("redis down")}
	task, opts, err := NewPushTask(models.PushPayload{UserID: "u-1"})
	err = Enqueue(context.Background(), q, task, opts, err)
	require.Error(t, err)
	assert.Contains(t, err.Error(), TypePushNotify)

	err = Enqueue(context.Background(), q, nil, nil, errors.New("marshal failed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build task")
}
