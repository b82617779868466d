package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/roadready/roadready-api/internal/chat"
	"github.com/roadready/roadready-api/internal/config"
	"github.com/roadready/roadready-api/internal/database"
	"github.com/roadready/roadready-api/internal/handler"
	"github.com/roadready/roadready-api/internal/license"
	"github.com/roadready/roadready-api/internal/payment"
	"github.com/roadready/roadready-api/internal/queue"
	"github.com/roadready/roadready-api/internal/repository"
	"github.com/roadready/roadready-api/internal/router"
	queue_publisher "github.com/roadready/roadready-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the env directly

	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; chat quotas and rate limiting degrade open")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	licenses := repository.NewLicenseRepo(db)
	links := repository.NewLinkRepo(db)
	accessTokens := repository.NewAccessTokenRepo(db)
	settings := repository.NewSettingsRepo(db)
	results := repository.NewResultRepo(db)

	checker := license.NewChecker(licenses, cfg.AdminUserIDs)
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.CheckoutBaseURL)
	if cfg.StripeSecretKey == "" {
		logger.Warn("stripe secret key not set; payment endpoints will return configuration errors")
	}

	h := router.Handlers{
		Auth:    handler.NewAuthHandler(cfg, users, tokens),
		Payment: handler.NewPaymentHandler(cfg, gateway, licenses, checker, logger),
		Webhook: handler.NewWebhookHandler(cfg, gateway, licenses, logger),
		Link:    handler.NewLinkHandler(links, accessTokens, settings, checker),
		Results: handler.NewResultsHandler(results),
		Chat: handler.NewChatHandler(
			chat.NewQuota(rdb, cfg.ChatDailyQuota),
			chat.NewClient(cfg.ChatAPIURL, cfg.ChatAPIKey, cfg.ChatModel),
			logger,
		),
		Contact: handler.NewContactHandler(queue_publisher.Publisher{}, logger),
	}

	go queue.StartContactConsumer(logger)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
