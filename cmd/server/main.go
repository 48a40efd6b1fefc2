package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frameguru/config"
	"frameguru/internal/api"
	"frameguru/internal/broker"
	"frameguru/internal/chat"
	"frameguru/internal/notify"
	"frameguru/internal/redisclient"
	"frameguru/internal/service"
	"frameguru/internal/store"
	"frameguru/internal/util"
	"frameguru/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting frameguru service")

	tp, err := util.InitTracer("frameguru", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	sendTimeout := time.Duration(cfg.Notify.SendTimeoutSec) * time.Second
	emailSender := notify.NewHTTPEmailSender(cfg.Notify.EmailAPIURL, cfg.Notify.EmailAPIKey, cfg.Notify.EmailFrom, sendTimeout)
	smsSender := notify.NewHTTPSMSSender(cfg.Notify.SMSAPIURL, cfg.Notify.SMSAPIKey, cfg.Notify.SMSFrom, sendTimeout)

	studio := notify.StudioInfo{
		Address: cfg.Business.StudioAddress,
		Phone:   cfg.Business.StudioPhone,
		Hours:   cfg.Business.StudioHours,
	}
	dispatcher := notify.NewDispatcher(db, emailSender, smsSender, studio, sendTimeout)
	processor := notify.NewProcessor(db, emailSender, smsSender, sendTimeout, cfg.Business.FollowUpWindow)

	orderService := service.NewOrderService(db, redisClient, eventPublisher, cfg.Business.TaxRate)
	catalogService := service.NewCatalogService(db)
	customerService := service.NewCustomerService(db)
	statusQuery := service.NewStatusQueryService(db, redisClient)

	intentClient := chat.NewHTTPIntentClient(cfg.Chat.IntentServiceURL)
	sessionTTL := time.Duration(cfg.Chat.SessionTTLHours) * time.Hour
	chatService := chat.NewService(intentClient, statusQuery, redisClient, sessionTTL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	notificationConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder, cfg.Kafka.ConsumerGroup)
	notificationWorker := worker.NewNotificationWorker(notificationConsumer, db, dispatcher)
	go func() {
		if err := notificationWorker.Start(workerCtx); err != nil {
			log.Printf("Notification worker error: %v", err)
		}
	}()

	sweepWorker := worker.NewSweepWorker(processor, time.Duration(cfg.Notify.SweepMinutes)*time.Minute)
	go func() {
		if err := sweepWorker.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Sweep worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(orderService, catalogService, customerService, statusQuery, chatService, dispatcher)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	notificationWorker.Stop()

	log.Println("Server exited")
}
