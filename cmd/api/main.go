// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/talentmarket/internal/admin"
	"github.com/carterperez-dev/talentmarket/internal/auth"
	"github.com/carterperez-dev/talentmarket/internal/config"
	"github.com/carterperez-dev/talentmarket/internal/core"
	"github.com/carterperez-dev/talentmarket/internal/health"
	"github.com/carterperez-dev/talentmarket/internal/middleware"
	"github.com/carterperez-dev/talentmarket/internal/payment"
	"github.com/carterperez-dev/talentmarket/internal/pricing"
	"github.com/carterperez-dev/talentmarket/internal/promo"
	"github.com/carterperez-dev/talentmarket/internal/server"
	"github.com/carterperez-dev/talentmarket/internal/subscription"
	"github.com/carterperez-dev/talentmarket/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := config.LoadDotEnv(".env", ".env.local"); err != nil {
		slog.Error("dotenv error", "error", err)
		os.Exit(1)
	}

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	if cfg.IsDevelopment() {
		created, keyErr := auth.EnsureKeyPair(
			cfg.JWT.PrivateKeyPath,
			publicKeyPath(cfg.JWT.PrivateKeyPath),
		)
		if keyErr != nil {
			return keyErr
		}
		if created {
			logger.Warn("generated development signing key",
				"path", cfg.JWT.PrivateKeyPath,
			)
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized", "algorithm", "ES256")

	tierRepo := pricing.NewRepository(db.DB)
	tierCache := pricing.NewRedisCatalogCache(redis.Client, cfg.Pricing.CatalogCacheTTL)
	pricingSvc := pricing.NewService(tierRepo, tierCache, logger)
	pricingHandler := pricing.NewHandler(pricingSvc)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(
		jwtManager,
		userSvc,
		auth.NewRedisBlacklist(redis.Client),
		logger,
	)
	authHandler := auth.NewHandler(authSvc, cfg.IsProduction())

	promoSvc := promo.NewService(promo.NewRepository(db.DB), pricingSvc)
	promoHandler := promo.NewHandler(promoSvc)

	paymentSvc := payment.NewService(
		payment.NewRepository(db.DB),
		payment.NewStripeProvider(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret),
		cfg.Stripe.Currency,
		logger,
	)

	subscriptionSvc := subscription.NewService(
		subscription.NewUnitOfWork(db),
		pricingSvc,
		userSvc,
		promoSvc,
		paymentSvc,
		logger,
	)
	subscriptionHandler := subscription.NewHandler(subscriptionSvc)
	paymentHandler := payment.NewHandler(paymentSvc, subscriptionSvc)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Billing:    paymentSvc,
		Catalog:    pricingSvc,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	optionalAuth := middleware.OptionalAuth(authSvc)
	adminOnly := middleware.RequireAdmin

	loginLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(5, 5),
		KeyFunc:  middleware.KeyByIP,
		FailOpen: false,
	}).Handler

	promoLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerMinute(
			cfg.Promo.ValidateRequests,
			cfg.Promo.ValidateBurst,
		),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	}).Handler

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, loginLimiter)

		pricingHandler.RegisterRoutes(r, optionalAuth)
		promoHandler.RegisterRoutes(r, authenticator, promoLimiter)
		subscriptionHandler.RegisterRoutes(r, authenticator)
		paymentHandler.RegisterRoutes(r)

		userHandler.RegisterRoutes(r, authenticator, subscriptionHandler.MountUserRoutes)

		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		pricingHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		promoHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		paymentHandler.RegisterAdminRoutes(r, authenticator, adminOnly)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func publicKeyPath(privateKeyPath string) string {
	return strings.TrimSuffix(privateKeyPath, filepath.Ext(privateKeyPath)) + ".pub.pem"
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
