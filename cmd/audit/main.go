// The audit service consumes fleet lifecycle events and stores them as the
// per-entity audit trail served by the fleet API.
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
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = time.Minute
	var repo *db.Repository
	err = backoff.Retry(func() error {
		repo, err = db.NewRepository(ctx, cfg.Database())
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		_ = repo.Close()
	}()

	audit := controller.NewAuditService(repo, logger)

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.GroupID(), cfg.Topic, logger)
	consumer.RegisterHandler(audit.Record)
	consumer.Start(ctx)
	logger.Info("Audit consumer started",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID()),
	)

	<-consumer.Done()
	consumer.Close()
	logger.Info("Audit consumer stopped")
}
