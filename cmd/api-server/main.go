package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hackgods/practice-scheduling/internal/api"
	"github.com/hackgods/practice-scheduling/internal/clock"
	"github.com/hackgods/practice-scheduling/internal/config"
	"github.com/hackgods/practice-scheduling/internal/db"
	"github.com/hackgods/practice-scheduling/internal/eventlog"
	"github.com/hackgods/practice-scheduling/internal/logging"
	"github.com/hackgods/practice-scheduling/internal/metrics"
	"github.com/hackgods/practice-scheduling/internal/practice"
	"github.com/hackgods/practice-scheduling/internal/reconcile"
	redisclient "github.com/hackgods/practice-scheduling/internal/redis"
	"github.com/hackgods/practice-scheduling/internal/scheduling"
	"github.com/hackgods/practice-scheduling/internal/seed"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("timezone", cfg.Timezone),
		zap.Int("horizon_days", cfg.HorizonDays),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk, err := clock.Load(cfg.Timezone)
	if err != nil {
		logger.Fatal("load timezone", zap.Error(err))
	}

	rules := practice.Default()
	if cfg.PracticeFile != "" {
		rules, err = practice.LoadFile(cfg.PracticeFile)
		if err != nil {
			logger.Fatal("load practice rules", zap.String("path", cfg.PracticeFile), zap.Error(err))
		}
	}

	var events eventlog.Sink = eventlog.NewLogSink(logger)
	var pgPool *pgxpool.Pool
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		if err == nil {
			sink := eventlog.NewPgSink(pgPool)
			err = sink.EnsureSchema(pgCtx)
			events = sink
		}
		cancelPg()
		if err != nil {
			logger.Fatal("postgres connection error", zap.Error(err))
		}
		defer pgPool.Close()
		logger.Info("connected to Postgres, audit log enabled")
	}

	var (
		rdb    *redis.Client
		locker redisclient.Locker
		claims redisclient.Claims
	)
	if cfg.RedisAddr != "" {
		rdb, err = redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Fatal("redis connection error", zap.Error(err))
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", zap.Error(err))
			}
		}()
		locker = redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
		claims = redisclient.NewRedisClaims(rdb)
		logger.Info("connected to Redis, slot locks and claims enabled", zap.Duration("lock_ttl", cfg.LockTTL))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewSchedulingMetrics(reg)

	sched := scheduling.New(scheduling.Options{
		Clock:       clk,
		Rules:       rules,
		HorizonDays: cfg.HorizonDays,
		Locker:      locker,
		Claims:      claims,
		Events:      events,
		Metrics:     m,
		Logger:      logger,
	})

	if cfg.SeedFile != "" {
		fx, err := seed.Load(cfg.SeedFile)
		if err != nil {
			logger.Fatal("load seed fixture", zap.Error(err))
		}
		if err := sched.Restore(rootCtx, fx.Patients, fx.Appointments); err != nil {
			logger.Fatal("restore seed fixture", zap.Error(err))
		}
		if err := sched.RestoreReviews(fx.Reviews); err != nil {
			logger.Fatal("restore seed reviews", zap.Error(err))
		}
		logger.Info("seed fixture restored",
			zap.Int("patients", len(fx.Patients)),
			zap.Int("appointments", len(fx.Appointments)),
			zap.Int("reviews", len(fx.Reviews)),
		)
	}
	if err := sched.Regenerate(rootCtx); err != nil {
		logger.Fatal("generate slots", zap.Error(err))
	}

	worker := reconcile.NewWorker(sched, cfg.WorkerInterval, logger.Named("reconcile"))
	go worker.Run(rootCtx)

	router := api.NewRouter(api.RouterConfig{
		Scheduler:    sched,
		PgPool:       pgPool,
		Redis:        rdb,
		Logger:       logger.Named("http"),
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Env:          cfg.Env,
		Version:      version,
		RateLimitRPS: cfg.RateLimitRPS,
		CORSOrigins:  cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", zap.Error(err))
	}
}
