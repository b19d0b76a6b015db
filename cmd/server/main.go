package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kosuite/shopcore/internal/affiliate"
	"github.com/kosuite/shopcore/internal/api"
	"github.com/kosuite/shopcore/internal/cartstore"
	"github.com/kosuite/shopcore/internal/config"
	"github.com/kosuite/shopcore/internal/mailer"
	"github.com/kosuite/shopcore/internal/metrics"
	"github.com/kosuite/shopcore/internal/payment"
	"github.com/kosuite/shopcore/internal/repository/postgres"
	"github.com/kosuite/shopcore/internal/service"
	"github.com/kosuite/shopcore/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	// Session cart store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()
	carts := service.NewCartService(cartstore.NewRedisStore(redisClient), logger)

	// Repositories and outbound clients. Each client is constructed once
	// here and injected; nothing builds clients lazily per request.
	orders := postgres.NewOrderRepository(db, logger)
	gateway := payment.NewClient(cfg.Payment, logger)
	mail := mailer.NewClient(cfg.Mail, logger)
	tracker := affiliate.NewClient(cfg.Affiliate, logger)
	m := metrics.New(prometheus.DefaultRegisterer)

	checkout := service.NewCheckoutService(orders, gateway, carts, cfg.PublicBaseURL, logger)
	lifecycle := service.NewLifecycleService(orders, mail, tracker, m, logger)
	verifier := webhook.NewVerifier(cfg.Webhook.SigningSecret, logger)

	router := api.NewRouter(cfg, api.Dependencies{
		Carts:     carts,
		Checkout:  checkout,
		Lifecycle: lifecycle,
		Orders:    orders,
		Verifier:  verifier,
		Metrics:   m,
	}, logger)

	logger.Info("Starting server",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("payment_mode", cfg.Payment.Mode),
	)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	if cfg.Environment == "production" {
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		return zc.Build()
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
