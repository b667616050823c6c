// Package main runs the background job worker: reservation history and CSV exports.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aura-reserve/backend/config"
	"github.com/aura-reserve/backend/internal/exports"
	"github.com/aura-reserve/backend/internal/server"
	"github.com/aura-reserve/backend/internal/worker"
	"github.com/aura-reserve/backend/pkg/logger"
	"github.com/aura-reserve/backend/pkg/queue"
	"github.com/aura-reserve/backend/pkg/redis"
	"github.com/aura-reserve/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.App.LogLevel, cfg.App.Env, "worker")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.Redis.Addr == "" {
		log.Fatal("worker requires REDIS_ADDR")
	}
	if cfg.Database.InMemory() {
		log.Fatal("worker cannot share an in-memory store with the server")
	}

	ctx := context.Background()
	backend, err := server.OpenBackend(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer backend.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, log)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var exportBuilder worker.ExportBuilder
	if cfg.AWS.ExportsBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, log)
		if err != nil {
			log.Fatal("s3", zap.Error(err))
		}
		exportBuilder = exports.NewService(backend.Store, s3Client, nil, log)
	}

	jobQueue := queue.NewQueue(rdb.Client, log)
	processor := worker.NewProcessor(jobQueue, backend.History, exportBuilder, log)

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	log.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn("worker did not stop in time")
	}
	log.Info("worker stopped")
}
