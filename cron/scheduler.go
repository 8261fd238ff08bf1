package cron

import (
	"context"
	"time"

	"jamb/services/tasks"
	"jamb/utils"

	cronlib "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartScheduler enqueues a materials import on the given cron spec.
func StartScheduler(spec, planFile string, q tasks.Enqueuer) (*cronlib.Cron, error) {
	c := cronlib.New()
	_, err := c.AddFunc(spec, func() {
		enqueueImport(q, planFile)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	utils.GetLogger().Info("Materials import scheduled", zap.String("spec", spec))
	return c, nil
}

func enqueueImport(q tasks.Enqueuer, planFile string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	task, opts, err := tasks.NewImportTask(planFile)
	if err := tasks.Enqueue(ctx, q, task, opts, err); err != nil {
		utils.GetLogger().Error("Failed to enqueue scheduled import", zap.Error(err))
	}
}
