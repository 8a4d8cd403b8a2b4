package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	v1 "github.com/DennisFranco/AparcoYo-Parking-Chat/cmd/api/router/v1"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/config"
	cacheAdapter "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/adapter"
	cacheport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/cache/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/database"
	queueAdapter "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/queue/adapter"
	qport "github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/queue/port"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/infrastructure/realtime"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/internal/pkg/chat/application/task"
	"github.com/DennisFranco/AparcoYo-Parking-Chat/pkg/logger"
)

func main() {
	// Load .env if present; containerized deployments provide env directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Env)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the database on startup
	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.Migrate(migrateCtx, pool)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Redis is optional: without it the server runs with no list cache and no
	// offline-notification queue.
	var (
		cache       cacheport.Cache
		queueClient qport.Client
	)
	if cfg.RedisURL != "" {
		redisCache, err := cacheAdapter.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisCache.Close()
		cache = redisCache

		asynqClient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create queue client")
		}
		defer asynqClient.Close()
		queueClient = asynqClient

		worker, err := queueAdapter.NewAsynqServer(cfg.RedisURL, cfg.AsynqConcurrency)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create queue worker")
		}
		task.RegisterNotifyOfflineTask(worker)
		go func() {
			if err := worker.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("queue worker stopped")
			}
		}()
	} else {
		logger.Warn().Msg("REDIS_URL not set, running without cache and background queue")
	}

	router := realtime.NewRouter()
	defer router.Close()

	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if origins := cfg.Origins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
			return
		}
		if cache != nil {
			if err := cache.Ping(pingCtx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, pool, cache, queueClient, router)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("chat server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}
}
