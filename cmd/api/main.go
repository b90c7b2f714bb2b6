package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"digihub/config"
	"digihub/internal/handler"
	"digihub/internal/httpserver"
	"digihub/internal/repository"
	"digihub/internal/service/activity"
	"digihub/internal/service/auth"
	"digihub/internal/service/entity"
	"digihub/pkg/db"
	"digihub/pkg/logger"
	"digihub/pkg/mq"
	"digihub/pkg/outbox"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.App.DevMode)
	defer log.Sync()
	if !cfg.App.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.ApplyMigrations(ctx, dbConn, cfg.Migrations.Dir, log); err != nil {
		log.Fatal("Migrations failed", zap.Error(err))
	}

	// Init Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	userRepo := repository.NewUserRepository(dbConn, log)
	entityRepo := repository.NewEntityRepository(dbConn, log)
	activityRepo := repository.NewActivityRepository(dbConn, outboxRepo, log)
	groupRepo := repository.NewGroupRepository(dbConn, log)
	hierarchyRepo := repository.NewHierarchyRepository(dbConn, log)
	notificationRepo := repository.NewNotificationRepository(dbConn, log)

	// Init Services
	authService := auth.NewService(userRepo, cfg.JWT.Secret, cfg.TokenTTL())
	activityService := activity.NewService(activityRepo, log).
		WithPageSizes(cfg.Activity.DefaultPageSize, cfg.Activity.MaxPageSize)
	entityService := entity.NewService(entityRepo, log)

	handlers := httpserver.Handlers{
		Auth:         handler.NewAuthHandler(authService, log),
		Activity:     handler.NewActivityHandler(activityService, log),
		Entity:       handler.NewEntityHandler(entityService, log),
		Group:        handler.NewGroupHandler(groupRepo, log),
		Hierarchy:    handler.NewHierarchyHandler(hierarchyRepo, log),
		Notification: handler.NewNotificationHandler(notificationRepo, log),
	}

	// Outbox replay needs the broker; the API keeps serving without it.
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Warn("MQ publisher unavailable, admin replay disabled", zap.Error(err))
	} else {
		defer publisher.Close()
		replayService := outbox.NewReplayService(outboxRepo, publisher, log)
		handlers.Admin = handler.NewAdminHandler(replayService, log)
	}

	router := httpserver.NewRouter(handlers, httpserver.Options{
		JWTSecret: cfg.JWT.Secret,
		DevMode:   cfg.App.DevMode,
		DB:        dbConn,
		Logger:    log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("Starting DigiHub API", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server start failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
