package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/proshop/proshop/pkg/api"
	"github.com/proshop/proshop/pkg/auth"
	"github.com/proshop/proshop/pkg/config"
	"github.com/proshop/proshop/pkg/middleware"
	"github.com/proshop/proshop/pkg/observability"
	"github.com/proshop/proshop/pkg/orders"
	"github.com/proshop/proshop/pkg/products"
	"github.com/proshop/proshop/pkg/uploads"
	"github.com/proshop/proshop/pkg/users"
)

func main() {
	bootLog := logrus.New()
	bootLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := sql.Open("postgres", cfg.Database.PostgresURL)
	if err != nil {
		bootLog.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		bootLog.Fatalf("Failed to connect to database: %v", err)
	}

	userStore := users.NewSQLStore(db)
	productStore := products.NewSQLStore(db)
	orderStore := orders.NewSQLStore(db)
	for _, migrate := range []func(context.Context) error{
		userStore.Migrate, productStore.Migrate, orderStore.Migrate,
	} {
		if err := migrate(ctx); err != nil {
			bootLog.Fatalf("Failed to run migrations: %v", err)
		}
	}

	fileStore, err := uploads.NewFileStore(cfg.Uploads.Dir)
	if err != nil {
		bootLog.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// The login limiter is Redis-backed when Redis is configured, so the
	// attempt budget holds across replicas; otherwise it is in-process.
	var redisClient *redis.Client
	var limiter middleware.LoginLimiter
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			bootLog.Warnf("Redis unavailable, falling back to in-process rate limiting: %v", err)
			redisClient = nil
		}
	}
	if redisClient != nil {
		limiter = middleware.NewDistributedRateLimiter(redisClient, middleware.LoginRateLimitConfig(), "proshop:login")
	} else {
		local := middleware.NewRateLimiter(middleware.LoginRateLimitConfig())
		go local.StartCleanup(context.Background())
		limiter = local
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	server := api.NewServer(api.Options{
		Logger:        logger,
		Metrics:       metrics,
		Health:        observability.NewHealthChecker(db, redisClient),
		Users:         userStore,
		Products:      productStore,
		Orders:        orderStore,
		Uploads:       fileStore,
		TokenIssuer:   auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret)),
		LoginLimiter:  limiter,
		SecureCookies: cfg.Auth.SecureCookies(),
		MaxBodyBytes:  cfg.Uploads.MaxSizeBytes,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		return db.Close()
	})
	if redisClient != nil {
		shutdown.RegisterShutdownFunc(func(context.Context) error {
			return redisClient.Close()
		})
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			bootLog.Fatalf("Server failed: %v", err)
		}
	}()

	if err := shutdown.WaitForShutdown(); err != nil {
		bootLog.Fatalf("Shutdown failed: %v", err)
	}
}
