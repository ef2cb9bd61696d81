// File: vecino/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vecino/config"
	"vecino/cron"
	"vecino/database"
	deliverylogRepo "vecino/database/repository/deliverylog"
	notificationRepo "vecino/database/repository/notification"
	preferencesRepo "vecino/database/repository/preferences"
	userRepoPkg "vecino/database/repository/user"
	"vecino/handlers"
	"vecino/routes"
	"vecino/services/notification"
	"vecino/services/user"
	"vecino/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/mrz1836/postmark"
	"github.com/twilio/twilio-go"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	notifRepo := notificationRepo.NewMongoNotificationRepo()
	prefsRepo := preferencesRepo.NewMongoPreferencesRepo()
	logsRepo := deliverylogRepo.NewMongoDeliveryLogRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	userService := &user.DefaultUserService{
		Repo: userRepo,
	}

	// channel adapters.
	unreadBadge := func(ctx context.Context, userID string) int {
		if n := utils.CachedUnreadBadge(ctx, userID); n >= 0 {
			return n
		}
		count, err := notifRepo.CountUnread(userID)
		if err != nil {
			return 0
		}
		utils.SetUnreadBadge(ctx, userID, int(count))
		return int(count)
	}

	twilioClient := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: config.AppConfig.TwilioAccountSID,
		Password: config.AppConfig.TwilioAuthToken,
	})

	registry := notification.NewAdapterRegistry(
		&notification.PushAdapter{Client: utils.FCMClient, Unread: unreadBadge},
		&notification.EmailAdapter{
			Client: postmark.NewClient(config.AppConfig.PostmarkServerToken, config.AppConfig.PostmarkAccountToken),
			Sender: config.AppConfig.EmailSender,
		},
		&notification.SmsAdapter{Client: twilioClient.Api, FromNumber: config.AppConfig.TwilioFromNumber},
		&notification.InAppAdapter{},
	)

	taskScheduler := cron.NewTaskScheduler()
	defer taskScheduler.Close()

	notificationService, err := notification.NewDefaultNotificationService(
		notifRepo, prefsRepo, logsRepo, userService, registry, taskScheduler, logger,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}
	notificationService.SweepLimit = config.AppConfig.SweepBatchSize
	notificationService.InvalidateBadge = utils.InvalidateUnreadBadge

	// Background delivery worker (redelivery queue + periodic sweep).
	cron.InitDeliveryWorker(notificationService)

	// handlers.
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	preferencesHandler := handlers.NewPreferencesHandler(notificationService)
	deviceHandler := handlers.NewDeviceHandler(userService)

	// Register routes.
	routes.RegisterRoutes(router, notificationHandler, preferencesHandler, deviceHandler)

	// Health monitor for the dashboard endpoint.
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient()}, database.MongoClient)

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
