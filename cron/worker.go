package cron

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jamb/config"
	"jamb/database/repository"
	orderRepo "jamb/database/repository/order"
	userRepo "jamb/database/repository/user"
	"jamb/metrics"
	"jamb/models"
	"jamb/services/email"
	"jamb/services/importer"
	"jamb/services/notification"
	"jamb/services/tasks"
	"jamb/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ImportRunner runs a materials import plan.
type ImportRunner interface {
	Run(ctx context.Context, plan *models.ImportPlan) (models.ImportReport, error)
}

// Handlers processes the background jobs. Mailer, Push and Importer are optional; jobs
// whose backend is missing are dropped with a warning.
type Handlers struct {
	Orders   repository.OrderRepository
	Users    repository.UserRepository
	Emails   email.EmailService
	Mailer   email.Sender
	Push     notification.NotificationService
	Importer ImportRunner
	PlanFile string
}

// NewServeMux routes every task type to its handler.
func NewServeMux(h *Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeOrderEmail, instrument(tasks.TypeOrderEmail, h.HandleOrderEmail))
	mux.HandleFunc(tasks.TypePushNotify, instrument(tasks.TypePushNotify, h.HandlePush))
	mux.HandleFunc(tasks.TypeImportRefresh, instrument(tasks.TypeImportRefresh, h.HandleImport))
	return mux
}

func instrument(taskType string, fn asynq.HandlerFunc) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		err := fn(ctx, task)
		metrics.RecordJob(taskType, err == nil)
		return err
	}
}

func (h *Handlers) HandleOrderEmail(ctx context.Context, task *asynq.Task) error {
	logger := utils.GetLogger()
	var p models.OrderEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("invalid email payload: %v: %w", err, asynq.SkipRetry)
	}
	if h.Mailer == nil {
		logger.Warn("Mailer not configured, dropping order email", zap.String("orderID", p.OrderID))
		return nil
	}

	order, err := h.Orders.GetByID(p.OrderID)
	if errors.Is(err, orderRepo.ErrOrderNotFound) {
		return fmt.Errorf("order %s no longer exists: %w", p.OrderID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	user, err := h.Users.GetByID(p.UserID)
	if errors.Is(err, userRepo.ErrUserNotFound) {
		return fmt.Errorf("user %s no longer exists: %w", p.UserID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}

	msg, err := h.Emails.Render(p.Kind, order, user)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := h.Mailer.Send(ctx, msg); err != nil {
		logger.Error("Failed to send order email", zap.String("orderID", p.OrderID), zap.Error(err))
		return err
	}
	logger.Info("Order email sent", zap.String("orderID", p.OrderID), zap.String("kind", string(p.Kind)))
	return nil
}

func (h *Handlers) HandlePush(ctx context.Context, task *asynq.Task) error {
	var p models.PushPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("invalid push payload: %v: %w", err, asynq.SkipRetry)
	}
	if h.Push == nil {
		return nil
	}
	return h.Push.SendUserPushNotification(ctx, p.UserID, p.Title, p.Body, p.Data)
}

func (h *Handlers) HandleImport(ctx context.Context, task *asynq.Task) error {
	if h.Importer == nil {
		utils.GetLogger().Warn("Importer not configured, dropping import job")
		return nil
	}
	planFile, err := tasks.ImportPlanOf(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if planFile == "" {
		planFile = h.PlanFile
	}
	plan, err := importer.LoadPlan(planFile)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	report, err := h.Importer.Run(ctx, plan)
	if err != nil {
		return err
	}
	utils.GetLogger().Info("Scheduled import done", zap.String("summary", importer.Summary(report)))
	return nil
}

// QueueRedisOpt is the asynq connection of the job queue database.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// InitWorker runs the async worker in background and returns it for shutdown.
func InitWorker(h *Handlers) *asynq.Server {
	logger := utils.GetLogger()
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				tasks.QueueDefault: 3,
				tasks.QueueImports: 1,
			},
			Logger: logger.Sugar(),
		},
	)
	mux := NewServeMux(h)

	go func() {
		logger.Info("Starting job worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil || errors.Is(err, asynq.ErrServerClosed) {
				return
			}
			logger.Error("Job worker failed to start",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Job worker could not be started")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}
