package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wtppaul/course-marketplace/internal/config"
	"github.com/wtppaul/course-marketplace/internal/database"
	"github.com/wtppaul/course-marketplace/internal/gateway"
	"github.com/wtppaul/course-marketplace/internal/handler"
	"github.com/wtppaul/course-marketplace/internal/logger"
	"github.com/wtppaul/course-marketplace/internal/middleware"
	"github.com/wtppaul/course-marketplace/internal/redis"
	"github.com/wtppaul/course-marketplace/internal/repository"
	"github.com/wtppaul/course-marketplace/internal/routes"
	"github.com/wtppaul/course-marketplace/internal/service"
)

func main() {
	// 1️⃣ Load environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 2️⃣ Setup database & redis
	db, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("database init failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	var locker service.WebhookLocker
	redisClient, err := redis.NewClient(ctx, cfg)
	cancel()
	if err != nil {
		log.Warn("redis unavailable, webhook deliveries run without the order lock", "error", err)
	} else {
		defer redisClient.Close()
		locker = redis.NewWebhookLocker(redisClient)
		fmt.Println("✅ Redis connected")
	}

	// 3️⃣ Payment gateway client, built once
	gw := gateway.NewClient(cfg.Gateway)

	// 4️⃣ Repositories -> services -> handlers
	courseRepo := repository.NewCourseRepository(db)
	contentRepo := repository.NewContentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	publishingService := service.NewPublishingService(courseRepo, contentRepo, log)
	contentService := service.NewContentService(courseRepo, contentRepo, publishingService, log)
	progressService := service.NewProgressService(courseRepo, contentRepo, progressRepo, enrollmentRepo, log)
	enrollmentService := service.NewEnrollmentService(courseRepo, contentRepo, enrollmentRepo, log)
	paymentService := service.NewPaymentService(
		courseRepo, enrollmentRepo, paymentRepo,
		gw, locker, service.PaymentSettingsFromConfig(cfg), log,
	)

	handlers := routes.Handlers{
		Course:     handler.NewCourseHandler(contentService, publishingService, courseRepo),
		Content:    handler.NewContentHandler(contentService, publishingService, enrollmentService, courseRepo),
		Progress:   handler.NewProgressHandler(progressService, courseRepo),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService, courseRepo),
		Payment:    handler.NewPaymentHandler(paymentService, courseRepo),
	}

	// 5️⃣ Init Gin
	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log))
	_ = router.SetTrustedProxies(nil)

	// 6️⃣ Centralized route setup
	routes.SetupRoutes(router, handlers, cfg.InternalAPISecret)

	// 7️⃣ Run server
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		fmt.Println("🚀 Course-marketplace running at http://localhost:" + cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
