package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lokanta/reservations/internal/bot"
	"github.com/lokanta/reservations/internal/config"
	"github.com/lokanta/reservations/internal/database"
	"github.com/lokanta/reservations/internal/handler"
	"github.com/lokanta/reservations/internal/intent"
	"github.com/lokanta/reservations/internal/observ"
	"github.com/lokanta/reservations/internal/queue"
	"github.com/lokanta/reservations/internal/repository"
	"github.com/lokanta/reservations/internal/router"
	"github.com/lokanta/reservations/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database open failed", zap.Error(err))
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and dedupe fast path disabled")
	}

	tableRepo := repository.NewTableRepo(db)
	reservationRepo := repository.NewReservationRepo(db)
	conversationRepo := repository.NewConversationRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	eventRepo := repository.NewWebhookEventRepo(db)

	publisher := &queue.Publisher{Logger: logger}
	svc := service.NewReservationService(tableRepo, reservationRepo, conversationRepo, publisher, logger)
	guard := &service.IngestGuard{Events: eventRepo, Redis: rdb}
	machine := bot.New(conversationRepo, messageRepo, svc, intent.NewKeywordExtractor(), logger)

	reservationHandler := handler.NewReservationHandler(svc)
	tableHandler := handler.NewTableHandler(tableRepo)
	webhookHandler := handler.NewWebhookHandler(guard, machine, messageRepo, cfg.WebhookVerifyToken, logger)

	go queue.StartReservationConsumer(logger)

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, reservationHandler, tableHandler, webhookHandler, rdb, config.LoadRateLimitConfig())

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
