// Package main runs the reservation HTTP server with WebSocket updates and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aura-reserve/backend/config"
	"github.com/aura-reserve/backend/internal/auth"
	"github.com/aura-reserve/backend/internal/events"
	"github.com/aura-reserve/backend/internal/exports"
	"github.com/aura-reserve/backend/internal/realtime"
	"github.com/aura-reserve/backend/internal/server"
	"github.com/aura-reserve/backend/pkg/logger"
	"github.com/aura-reserve/backend/pkg/queue"
	"github.com/aura-reserve/backend/pkg/redis"
	"github.com/aura-reserve/backend/pkg/storage"
	"github.com/aura-reserve/backend/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.App.LogLevel, cfg.App.Env, "api")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	backend, err := server.OpenBackend(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer backend.Close()

	var (
		hub       *realtime.Hub
		publisher events.Fanout
		jobQueue  *queue.Queue
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, log)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		pubsub := realtime.NewRedisPubSub(rdb.Client, log)
		hub = realtime.NewHub(log, pubsub, pubsub)
		jobQueue = queue.NewQueue(rdb.Client, log)
		publisher = events.Fanout{hub, events.NewQueuePublisher(jobQueue, log)}
	} else {
		log.Info("redis not configured; history is recorded inline and live updates stay local")
		hub = realtime.NewHub(log, nil, nil)
		publisher = events.Fanout{hub, events.NewRecorderPublisher(backend.History, log)}
	}

	var exportSvc *exports.Service
	if cfg.AWS.ExportsBucket != "" && jobQueue != nil {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, log)
		if err != nil {
			log.Warn("s3 disabled", zap.Error(err))
		} else {
			exportSvc = exports.NewService(backend.Store, s3Client, jobQueue, log)
		}
	}

	router := server.NewRouter(server.Deps{
		Store:       backend.Store,
		History:     backend.History,
		Publisher:   publisher,
		Hub:         hub,
		Exports:     exportSvc,
		JWT:         auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireMinutes),
		Hasher:      utils.NewPasswordHasher(cfg.Security.BcryptCost),
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
