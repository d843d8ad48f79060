package main

import (
	"chatup/backend/internal/api/handler"
	"chatup/backend/internal/chathub"
	"chatup/backend/internal/config"
	"chatup/backend/internal/localization"
	"chatup/backend/internal/logger"
	"chatup/backend/internal/metrics"
	"chatup/backend/internal/models"
	"chatup/backend/internal/storage"
	"chatup/backend/internal/topics"
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// dependencies holds the optional backing services.
type dependencies struct {
	log     storage.MessageLog
	archive storage.RoomArchive
	health  handler.HealthCheck
	close   func()
}

func setupDependencies(ctx context.Context, cfg config.Config, log *zap.Logger) (*dependencies, error) {
	deps := &dependencies{
		log:     storage.NewMemoryLog(),
		archive: storage.NopArchive{},
		close:   func() {},
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		redisLog := storage.NewRedisLog(rdb)
		if err := redisLog.Ping(ctx); err != nil {
			rdb.Close()
			return nil, errors.Wrap(err, "connect redis")
		}
		deps.log = redisLog
		deps.health = redisLog.Ping
		deps.close = func() { rdb.Close() }
		log.Info("using redis message log", zap.String("addr", cfg.RedisAddr))
	} else {
		log.Warn("REDIS_ADDR not set, messages are kept in memory")
	}

	if cfg.DatabaseDSN != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
		if err != nil {
			deps.close()
			return nil, errors.Wrap(err, "connect postgres")
		}
		if err := db.WithContext(ctx).AutoMigrate(&models.ChatRoom{}); err != nil {
			deps.close()
			return nil, errors.Wrap(err, "run migrations")
		}
		deps.archive = storage.NewGormArchive(db)
		log.Info("room archive enabled")
	}

	return deps, nil
}

func main() {
	dotEnvErr := config.LoadDotEnv()
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.Env)
	defer log.Sync()

	if dotEnvErr != nil && !os.IsNotExist(errors.Cause(dotEnvErr)) {
		log.Warn("failed to load .env file", zap.Error(dotEnvErr))
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setupDependencies(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to set up dependencies", zap.Error(err))
	}
	defer deps.close()

	texts, err := localization.NewDefaultLocalizer()
	if err != nil {
		log.Fatal("failed to load translations", zap.Error(err))
	}
	picker, err := topics.NewDefaultPicker()
	if err != nil {
		log.Fatal("failed to load topics", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	hub := chathub.NewManagerService(deps.log, deps.archive, log.Named("hub"),
		chathub.WithMetrics(collector),
		chathub.WithLocalizer(texts),
		chathub.WithGracePeriod(cfg.GracePeriod),
		chathub.WithMaxMessageLength(cfg.MaxMessageLength),
	)
	go hub.Run(ctx)

	if cfg.CleanupEnabled {
		sweeper := chathub.NewSweeper(hub, cfg.CleanupInterval, log.Named("sweeper"))
		go sweeper.Run(ctx)
	}

	h := handler.NewHandler(hub,
		handler.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		picker,
		handler.OriginChecker(cfg.TrustedOrigin, cfg.IsDevelopment()),
		log.Named("http"),
	)
	h.Health = deps.health
	router := handler.NewRouter(h, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
