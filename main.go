// File: hestia/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hestia/config"
	"hestia/cron"
	"hestia/database"
	ticketRepoPkg "hestia/database/repository/ticket"
	"hestia/handlers"
	"hestia/middleware"
	"hestia/routes"
	"hestia/services/conversation"
	"hestia/services/nlu"
	"hestia/services/notification"
	"hestia/services/ticketing"
	"hestia/services/whatsapp"
	"hestia/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.FirebaseInit()
	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	ticketRepo := ticketRepoPkg.NewMongoTicketRepo()
	if err := ticketRepo.EnsureIndexes(); err != nil {
		logger.Sugar().Warnf("main: failed to ensure ticket indexes: %v", err)
	}

	// services.
	ticketingService := &ticketing.DefaultTicketingService{
		Repo:   ticketRepo,
		SLA:    ticketing.NewSLATableFromConfig(),
		Logger: logger,
	}

	geminiClient, err := nlu.NewGeminiClient(config.AppConfig.GeminiAPIKey, config.AppConfig.GeminiModel)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize gemini client: %v", err)
	}
	nluService := &nlu.GeminiNLUService{Generator: geminiClient, Logger: logger}
	faqService := &nlu.GeminiFAQService{Generator: geminiClient, Logger: logger}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNotifyQueueDB,
	})
	defer asynqClient.Close()

	notifyService, err := notification.NewDefaultNotificationService(asynqClient, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	waClient := whatsapp.NewClient()

	var transcriber whatsapp.Transcriber
	if stt, err := whatsapp.NewGoogleTranscriber(context.Background(), config.AppConfig.SpeechCredentialsFile); err != nil {
		logger.Sugar().Warnf("main: voice transcription disabled: %v", err)
	} else {
		transcriber = stt
		defer stt.Close()
	}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	sessionStore := conversation.NewRedisSessionStore(utils.GetSessionCacheClient(), sessionTTL)

	conversationService := &conversation.DefaultConversationService{
		Store:    sessionStore,
		NLU:      nluService,
		FAQ:      faqService,
		Tickets:  ticketingService,
		Notifier: notifyService,
		Logger:   logger,
		OrgID:    config.AppConfig.OrgID,
		HotelID:  config.AppConfig.HotelID,
	}

	// Background worker delivering staff alerts.
	cron.InitNotifyWorker(waClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		VerifyWebhookHandler:  handlers.VerifyWebhookHandler(),
		ReceiveWebhookHandler: handlers.ReceiveWebhookHandler(conversationService, waClient, waClient, transcriber),

		ListSessionsHandler:  handlers.ListSessionsHandler(sessionStore),
		ExpireSessionHandler: handlers.ExpireSessionHandler(sessionStore),
		ListTicketsHandler:   handlers.ListTicketsHandler(ticketingService),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Local convenience: print an ops token so the /api/ops endpoints are
	// reachable without a separate mint step.
	if !config.IsProduction() {
		if token, err := utils.GenerateToken("ops-local", 24*time.Hour); err == nil {
			logger.Sugar().Debugf("dev ops token: %s", token)
		}
	}

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
