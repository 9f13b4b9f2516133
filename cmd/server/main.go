// Package main is the entry point for the application.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pazar/internal/config"
	"pazar/internal/handlers"
	"pazar/internal/repositories"
	"pazar/internal/repositories/cache"
	"pazar/internal/repositories/memory"
	"pazar/internal/routes"
	"pazar/internal/scheduler"
	"pazar/internal/services/auth"
	"pazar/internal/services/escrow"
	"pazar/internal/services/ledger"
	"pazar/internal/services/listing"
	"pazar/internal/services/notification"
	"pazar/internal/services/payment"
	"pazar/internal/services/promotion"
	"pazar/internal/services/wallet"
	"pazar/internal/utils"
	"pazar/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("component=main msg=\"invalid configuration\" err=%v", err)
	}
	market, err := cfg.Market()
	if err != nil {
		log.Fatalf("component=main msg=\"invalid market configuration\" err=%v", err)
	}

	ctx := context.Background()
	health := map[string]handlers.HealthCheckFunc{}

	// Store
	var store repositories.Store
	switch cfg.StoreDriver {
	case "memory":
		log.Println("component=main msg=\"using in-memory store; data is not persisted\"")
		store = memory.NewStore()
	default:
		db, err := repositories.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("component=main msg=\"database unavailable\" err=%v", err)
		}
		defer db.Close()
		store = repositories.NewStore(db.DB)
		health["database"] = db.Pool.Ping
	}

	// Balance cache
	var balances cache.BalanceCache = cache.NoopBalanceCache{}
	if addr := cfg.RedisAddr(); addr != "" {
		client := cache.NewRedisClient(cache.RedisConfig{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		cacheService := cache.NewCacheService(client, cfg.BalanceCacheTTL)
		if err := cacheService.HealthCheck(ctx); err != nil {
			log.Printf("component=main msg=\"redis unreachable, continuing without balance cache\" err=%v", err)
		} else {
			balances = cache.NewBalanceCache(cacheService)
			health["redis"] = cacheService.HealthCheck
			log.Printf("component=main msg=\"redis connected\" addr=%s", addr)
		}
	}

	// Notifications
	notificationService := notification.NewService(store)
	var publisher notification.Publisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewProducer(cfg.RabbitMQURL, cfg.EventExchange)
		if err != nil {
			log.Fatalf("component=main msg=\"rabbitmq producer unavailable\" err=%v", err)
		}
		defer producer.Close()

		consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("component=main msg=\"rabbitmq consumer unavailable\" err=%v", err)
		}
		defer consumer.Close()
		if err := consumer.ConsumeWithBindings(cfg.EventExchange, cfg.NotificationQueue, notificationService.Bindings()); err != nil {
			log.Fatalf("component=main msg=\"rabbitmq consume failed\" err=%v", err)
		}
		publisher = notification.NewAMQPPublisher(producer)
	} else {
		dispatcher := notification.NewDispatcher(notificationService.Handle, 0)
		defer dispatcher.Close()
		publisher = dispatcher
	}

	// Card processing
	tokenizer, charger := payment.NewTokenizer(), payment.NewSimulatedCharger()
	if cfg.StripeSecretKey != "" {
		tokenizer = payment.NewStripeTokenizer(cfg.StripeSecretKey)
		charger = payment.NewStripeCharger(cfg.StripeSecretKey)
	}
	paymentService := payment.NewService(tokenizer, charger, market.Currency)

	tokens := utils.NewTokenIssuer(cfg.JWTSecret, 0, 0)
	ledgerService := ledger.NewService(store, balances)
	promotionService := promotion.NewService(store, paymentService, publisher, balances, market)

	services := routes.Services{
		Auth:   auth.NewService(store, tokens),
		Tokens: tokens,
		Wallet: wallet.NewService(store, paymentService, balances, wallet.WalletConfig{
			Currency: market.Currency,
		}, &wallet.NoopMetricsCollector{}),
		Ledger:        ledgerService,
		Escrow:        escrow.NewService(store, paymentService, publisher, balances, market),
		Listing:       listing.NewService(store, publisher, market),
		Promotion:     promotionService,
		Notifications: notificationService,
		Health:        health,
	}

	jobs := scheduler.NewScheduler(
		scheduler.NewJobs(ledgerService, promotionService, cfg.ReconcileRepair),
		scheduler.Config{
			ReconcileSchedule:       cfg.ReconcileSchedule,
			PromotionExpirySchedule: cfg.PromotionExpirySchedule,
		},
	)
	if err := jobs.Start(); err != nil {
		log.Fatalf("component=main msg=\"scheduler failed to start\" err=%v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "pazar",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please try again later.",
			})
		},
	})
	app.Use("/api/register", authLimiter)
	app.Use("/api/login", authLimiter)

	routes.SetupRoutes(app, services)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("component=main msg=\"server stopped\" err=%v", err)
		}
	}()
	log.Printf("component=main msg=\"server started\" port=%s store=%s", cfg.Port, cfg.StoreDriver)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("component=main msg=\"shutting down\"")
	<-jobs.Stop().Done()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("component=main msg=\"server shutdown failed\" err=%v", err)
	}
}
