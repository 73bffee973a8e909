package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"schooladmin/internal/api"
	"schooladmin/internal/auth"
	"schooladmin/internal/blob"
	"schooladmin/internal/config"
	"schooladmin/internal/dashboard"
	"schooladmin/internal/httpmiddleware"
	"schooladmin/internal/live"
	"schooladmin/internal/logging"
	"schooladmin/internal/queue"
	"schooladmin/internal/school"
	"schooladmin/internal/store"
)

func main() {
	cfg := config.Load()
	log, err := logging.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync() //nolint:errcheck

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if logging.IsProduction(cfg.Env) {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func run(cfg config.App, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := store.OpenDocuments(ctx, cfg)
	if err != nil {
		return err
	}
	defer docs.Close()
	log.Info("record store ready", zap.String("backend", docs.Backend))

	health := map[string]func(context.Context) bool{"store": docs.Healthy}

	var redisClient *redis.Client
	if cfg.BrokerBackend == "redis" || cfg.QueueBackend == "redis" {
		r := store.NewRedis(cfg.RedisAddr)
		defer r.Close()
		redisClient = r.Client
		health["redis"] = r.Healthy
	}

	var broker live.Broker = live.NewMemory(64)
	if cfg.BrokerBackend == "redis" {
		broker = live.NewRedis(redisClient, "school:live", log)
	}

	var (
		q     queue.Queue
		cache dashboard.Cache
	)
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(redisClient, "school:changes")
		cache = dashboard.NewRedisCache(redisClient, "school:dashboard", cfg.DashboardTTL)
	} else {
		q = queue.NewInMemory(256)
		cache = dashboard.NewMemoryCache(cfg.DashboardTTL)
	}

	records := live.NewStore(docs, broker, log, dashboard.EnqueueHook(q, log))

	var (
		blobs    blob.Store
		filesDir string
	)
	switch cfg.BlobBackend {
	case "cloudinary":
		blobs = blob.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Info("cloudinary configured", zap.String("cloud", cfg.CloudinaryCloudName))
	default:
		blobs = blob.NewLocal(cfg.UploadDir, cfg.PublicBaseURL+"/files")
		filesDir = cfg.UploadDir
	}

	svc := school.NewService(records, blobs, log)
	dash := dashboard.NewService(svc, cache, log)

	accounts := auth.NewAccounts(records, 0)
	created, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.AdminEmail))
	}

	// The memory queue only reaches consumers in this process.
	if cfg.QueueBackend != "redis" {
		go func() {
			if err := dashboard.Run(ctx, q, dash, log); err != nil {
				log.Error("dashboard refresher stopped", zap.Error(err))
			}
		}()
	}

	var limiter, signInLimiter httpmiddleware.Limiter
	if redisClient != nil {
		limiter = httpmiddleware.NewRedisWindow(redisClient, "school:ratelimit", cfg.RateLimitPerMin)
		signInLimiter = httpmiddleware.NewRedisWindow(redisClient, "school:ratelimit", cfg.SignInLimitPerMin)
	} else {
		limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
		signInLimiter = httpmiddleware.NewTokenBucket(cfg.SignInLimitPerMin, cfg.SignInLimitPerMin)
	}

	h := &api.Handler{
		School:    svc,
		Dashboard: dash,
		Accounts:  accounts,
		Signer:    auth.NewSigner(cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL, cfg.RememberTTL),
		Store:     records,
		Broker:    broker,
		Log:       log,
	}
	r := api.NewRouter(h, api.Options{
		WebDir:        cfg.WebDir,
		FilesDir:      filesDir,
		Limiter:       limiter,
		SignInLimiter: signInLimiter,
		Health:        health,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}
	log.Info("server exited")
	return nil
}
