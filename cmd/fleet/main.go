package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/fleet/internal/fleet/config"
	"github.com/gartstein/fleet/internal/fleet/controller"
	"github.com/gartstein/fleet/internal/fleet/db"
	"github.com/gartstein/fleet/internal/fleet/events"
	"github.com/gartstein/fleet/internal/fleet/handlers"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	topicPartitions = 3
	startupTimeout  = time.Minute
)

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := connectDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close database", zap.Error(err))
		}
	}()

	if err := ensureTopic(ctx, cfg, logger); err != nil {
		logger.Fatal("Failed to reach Kafka", zap.Error(err))
	}
	producer := events.NewProducer(cfg.KafkaBrokers, cfg.Topic, logger)
	defer producer.Close()

	api := handlers.NewAPI(handlers.Services{
		Clients:  controller.NewClientService(repo, producer, logger),
		Drivers:  controller.NewDriverService(repo, producer, logger),
		Vehicles: controller.NewVehicleService(repo, producer, logger),
		Rentals:  controller.NewRentalService(repo, producer, logger),
		Audit:    controller.NewAuditService(repo, logger),
	}, logger)

	limiter, closeRedis := initRateLimiter(ctx, cfg, logger)
	defer closeRedis()

	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger)
	if err := server.RegisterHTTPGateway(
		ctx,
		api,
		[]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())},
		cfg.JWTSecret,
		limiter,
	); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

func retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = startupTimeout
	return backoff.WithContext(b, ctx)
}

// connectDatabase retries until Postgres accepts connections and migrations apply.
func connectDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	var repo *db.Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = db.NewRepository(ctx, cfg.Database())
		return err
	}, retryPolicy(ctx), func(err error, next time.Duration) {
		logger.Warn("Database not ready", zap.Error(err), zap.Duration("retry_in", next))
	})
	return repo, err
}

func ensureTopic(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	return backoff.RetryNotify(func() error {
		return events.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.Topic, topicPartitions, logger)
	}, retryPolicy(ctx), func(err error, next time.Duration) {
		logger.Warn("Kafka not ready", zap.Error(err), zap.Duration("retry_in", next))
	})
}

// initRateLimiter connects to Redis when configured. Without Redis the API
// runs unthrottled.
func initRateLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*handlers.RateLimiter, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("Rate limiting disabled: REDIS_ADDR not set")
		return nil, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err), zap.String("addr", cfg.RedisAddr))
	}

	proxies, err := handlers.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	return handlers.NewRateLimiter(rdb, cfg.RateLimitRPS, proxies, logger), func() {
		_ = rdb.Close()
	}
}
