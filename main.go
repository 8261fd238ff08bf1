// File: jamb/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jamb/config"
	"jamb/cron"
	"jamb/database"
	"jamb/database/repository"
	"jamb/handlers"
	"jamb/middleware"
	"jamb/routes"
	"jamb/services/catalog"
	"jamb/services/email"
	"jamb/services/estimate"
	"jamb/services/importer"
	"jamb/services/materials"
	"jamb/services/notification"
	"jamb/services/order"
	"jamb/services/payment"
	"jamb/services/pricing"
	"jamb/services/recommendation"
	"jamb/services/storage"
	"jamb/services/user"
	"jamb/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	database.InitMaterialsDB()
	utils.InitRedis()

	// repositories.
	catalogRepo := repository.NewMongoCatalogRepo()
	materialsRepo := repository.NewPostgresMaterialsRepo(database.MaterialsDB)
	orderRepo := repository.NewMongoOrderRepo()
	userRepo := repository.NewMongoUserRepository()

	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()

	// services.
	calculator, err := pricing.NewCalculator(cfg.ServiceFeeLaborRate, cfg.ServiceFeeMaterialsRate, cfg.Holidays)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid pricing configuration: %v", err)
	}

	catalogService := &catalog.DefaultCatalogService{
		Repo:  catalogRepo,
		Cache: &catalog.RedisCache{Client: utils.GetCacheClient()},
		TTL:   utils.CatalogCacheTTL,
	}
	materialsService := &materials.DefaultMaterialsService{Repo: materialsRepo}
	estimateService := &estimate.DefaultEstimateService{
		Catalog:    catalogService,
		Materials:  materialsService,
		Calculator: calculator,
	}

	orderService := &order.DefaultOrderService{
		Orders:     orderRepo,
		Users:      userRepo,
		Estimates:  estimateService,
		Calculator: calculator,
		Queue:      queue,
	}
	userService := &user.DefaultUserService{
		Repo:   userRepo,
		Orders: orderRepo,
		Tokens: user.NewRedisTokenStore(utils.GetAuthCacheClient()),
	}
	// A nil *StripePaymentService must not end up inside the interfaces.
	if stripeService := payment.NewStripePaymentService(cfg.StripeKey, cfg.Currency, nil); stripeService != nil {
		orderService.Payments = stripeService
		userService.Payments = stripeService
	} else {
		logger.Warn("STRIPE_KEY is not set, orders are placed without payment intents")
	}

	var uploader *storage.PhotoUploader
	if backend, err := storage.NewFromConfig(rootCtx, cfg); err != nil {
		logger.Warn("Photo storage is disabled", zap.Error(err))
	} else {
		uploader = storage.NewPhotoUploader(backend, "photos")
	}

	recommendationService := &recommendation.DefaultRecommendationService{
		Catalog:    catalogService,
		Services:   catalogRepo,
		Photos:     uploader,
		Contexts:   recommendation.NewRedisContextStore(utils.GetCacheClient(), recommendation.ChatContextTTL),
		QueryCache: &catalog.RedisCache{Client: utils.GetCacheClient()},
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := recommendation.NewGeminiClient(rootCtx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiEmbeddingModel)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize Gemini client: %v", err)
		}
		defer gemini.Close()
		recommendationService.Model = gemini
	} else {
		logger.Warn("GEMINI_API_KEY is not set, recommendations fall back to keyword search")
	}
	if cfg.GoogleCredentialsFile != "" {
		transcriber, err := recommendation.NewGoogleTranscriber(rootCtx, cfg.GoogleCredentialsFile)
		if err != nil {
			logger.Warn("Voice recommendations are disabled", zap.Error(err))
		} else {
			defer transcriber.Close()
			recommendationService.Transcriber = transcriber
		}
	}

	// background jobs.
	emailService, err := email.NewEmailService()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to load e-mail templates: %v", err)
	}
	jobHandlers := &cron.Handlers{
		Orders:   orderRepo,
		Users:    userRepo,
		Emails:   emailService,
		Mailer:   email.NewSenderFromConfig(cfg),
		PlanFile: cfg.ImportPlanFile,
	}
	if jobHandlers.Mailer == nil {
		logger.Warn("SMTP_HOST is not set, order e-mails are disabled")
	}
	messagingClient, err := utils.FirebaseInit(rootCtx)
	if err != nil {
		logger.Warn("Push notifications are disabled", zap.Error(err))
	}
	if messagingClient != nil {
		jobHandlers.Push = &notification.DefaultNotificationService{Users: userRepo, Sender: messagingClient}
	}
	if cfg.BigBoxAPIKey != "" {
		jobHandlers.Importer = &importer.Importer{
			Client:    importer.NewBigBoxClient(cfg.BigBoxBaseURL, cfg.BigBoxAPIKey),
			Materials: materialsService,
			History:   materialsRepo,
		}
	}
	worker := cron.InitWorker(jobHandlers)

	if cfg.ImportSchedule != "" {
		scheduler, err := cron.StartScheduler(cfg.ImportSchedule, cfg.ImportPlanFile, queue)
		if err != nil {
			logger.Sugar().Fatalf("main: invalid IMPORT_SCHEDULE %q: %v", cfg.ImportSchedule, err)
		}
		defer func() { <-scheduler.Stop().Done() }()
	}

	utils.StartHealthMonitor(rootCtx, utils.RedisClients(), database.MongoClient, database.MaterialsDB)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Auth:            userService,
		AdminKey:        cfg.AdminAPIKey,
		Catalog:         handlers.NewCatalogHandler(catalogService),
		Materials:       handlers.NewMaterialsHandler(materialsService),
		Estimate:        handlers.NewEstimateHandler(estimateService),
		Orders:          handlers.NewOrderHandler(orderService),
		Recommendations: handlers.NewRecommendationHandler(recommendationService),
		Uploads:         handlers.NewUploadHandler(uploader),
		Users:           handlers.NewUserHandler(userService),
		Admin:           handlers.NewAdminHandler(catalogService, queue, materialsRepo, cfg.ImportPlanFile),
	}
	routes.RegisterRoutes(router, handlerBundle)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Sugar().Infof("Jamb server running on port %s", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("Server failed: %v", err)
		}
	}()

	<-rootCtx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Error("Failed to close MongoDB", zap.Error(err))
	}
	if database.MaterialsDB != nil {
		database.MaterialsDB.Close()
	}
	logger.Info("Server exiting")
}
