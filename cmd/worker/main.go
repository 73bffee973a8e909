package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"schooladmin/internal/blob"
	"schooladmin/internal/config"
	"schooladmin/internal/dashboard"
	"schooladmin/internal/logging"
	"schooladmin/internal/queue"
	"schooladmin/internal/school"
	"schooladmin/internal/store"
)

// Worker consumes change messages and keeps the dashboard summary fresh.
func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if cfg.QueueBackend != "redis" {
		log.Fatal("worker needs QUEUE_BACKEND=redis; the memory queue is consumed inside the API process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := store.OpenDocuments(ctx, cfg)
	if err != nil {
		log.Fatal("record store connect failed", zap.Error(err))
	}
	defer docs.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		log.Warn("redis not reachable yet, consumer will keep retrying", zap.String("addr", cfg.RedisAddr))
	}

	// The worker only reads, so the raw store is used without change publishing
	// and uploads are never made.
	svc := school.NewService(docs, blob.NewLocal(cfg.UploadDir, cfg.PublicBaseURL+"/files"), log)
	dash := dashboard.NewService(svc, dashboard.NewRedisCache(redisClient.Client, "school:dashboard", cfg.DashboardTTL), log)

	if _, err := dash.Refresh(ctx); err != nil {
		log.Warn("initial dashboard refresh failed", zap.Error(err))
	}

	log.Info("worker started, waiting for changes")
	if err := dashboard.Run(ctx, queue.NewRedisQueue(redisClient.Client, "school:changes"), dash, log); err != nil {
		log.Fatal("queue consume failed", zap.Error(err))
	}
	log.Info("worker stopped")
}
