package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"digihub/config"
	mqcontracts "digihub/contracts/mq"
	"digihub/internal/mqhandler"
	"digihub/internal/repository"
	"digihub/pkg/db"
	"digihub/pkg/logger"
	"digihub/pkg/mq"
	"digihub/pkg/outbox"
	redisclient "digihub/pkg/redis"
	"digihub/pkg/util"

	"go.uber.org/zap"
)

const replyNotificationQueue = "comment.created.notification.q"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.App.DevMode)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting worker...")

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Redis is optional: without it handlers run without dedup and retry budgets.
	var (
		deduper *util.Deduper
		retries *util.RetryCounter
	)
	rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, running without dedup", zap.Error(err))
	} else {
		defer rdb.Close()
		deduper = util.NewDeduper(rdb, cfg.Worker.DedupTTL, log)
		retries = util.NewRetryCounter(rdb, cfg.Worker.DedupTTL)
	}

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Outbox dispatcher
	outboxRepo := outbox.NewRepository(dbConn)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log).
		WithInterval(cfg.Worker.DispatchInterval).
		WithMaxRetries(cfg.Worker.MaxRetries)
	go dispatcher.Start(ctx)

	// Reply notifications
	activityRepo := repository.NewActivityRepository(dbConn, outboxRepo, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)
	replyHandler := mqhandler.NewCommentReplyHandler(activityRepo, notificationRepo, deduper, retries, publisher, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, replyNotificationQueue, mqcontracts.RoutingKeyCommentCreated, log)
	if err != nil {
		log.Fatal("Failed to init reply consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(replyHandler.Handle)

	log.Info("Consuming", zap.String("queue", replyNotificationQueue))
	if err := consumer.StartConsuming(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("Consumer stopped", zap.Error(err))
	}
	log.Info("Worker stopped")
}
