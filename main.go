package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicore/config"
	"clinicore/cron"
	"clinicore/database"
	clinicRepo "clinicore/database/repository/clinic"
	"clinicore/handlers"
	"clinicore/middleware"
	"clinicore/routes"
	"clinicore/services/billing"
	"clinicore/services/notification"
	"clinicore/services/onboarding"
	"clinicore/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	cloudinaryStorageService, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	clinics := clinicRepo.NewMongoClinicRepo()

	// stores.
	sessionKV := onboarding.NewRedisKVStore(utils.GetSessionCacheClient())
	draftKV := onboarding.NewRedisKVStore(utils.GetDraftCacheClient())
	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	draftTTL := time.Duration(config.AppConfig.DraftTTLHours) * time.Hour
	sessions := onboarding.NewSessionStore(sessionKV, sessionTTL)
	drafts := onboarding.NewDraftStore(draftKV, draftTTL)

	stager, err := onboarding.NewFileStager(config.AppConfig.StagingDir)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize file staging: %v", err)
	}

	// collaborators.
	billingSvc := billing.NewStripeBillingService(logger)
	var notifier notification.Notifier
	if config.AppConfig.FirebaseCredentialsPath != "" {
		fcm, err := notification.NewFCMNotifier(
			config.AppConfig.FirebaseCredentialsPath,
			config.AppConfig.OpsNotifyTopic,
			logger,
		)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize FCM notifier: %v", err)
		}
		notifier = fcm
	}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer taskClient.Close()

	// services.
	onboardingService := &onboarding.DefaultOnboardingService{
		Sessions: sessions,
		Drafts:   drafts,
		Staging:  stager,
		Phones:   clinics,
		OTP:      onboarding.RedisOTPManager{},
		Tokens:   onboarding.JWTVerifyTokenIssuer{},
		Clinics:  clinics,
		Storage:  cloudinaryStorageService,
		Billing:  billingSvc,
		Notifier: notifier,
		Tasks:    taskClient,
		Logger:   logger,
	}

	onboardingHandler := handlers.NewOnboardingHandler(onboardingService)
	verifyHandler := handlers.NewVerifyHandler(onboardingService)

	routes.RegisterRoutes(router, onboardingHandler, verifyHandler)

	// Background workers and health monitoring.
	cron.InitReminderWorker(sessions, drafts)
	utils.StartHealthMonitor([]*redis.Client{
		utils.GetSessionCacheClient(),
		utils.GetDraftCacheClient(),
		utils.GetOTPCacheClient(),
	}, database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
