package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/aspas/internal/adapter/handler"
	"github.com/rl1809/aspas/internal/adapter/handler/salesrpc"
	"github.com/rl1809/aspas/internal/adapter/notify"
	"github.com/rl1809/aspas/internal/adapter/storage"
	"github.com/rl1809/aspas/internal/config"
	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/core/service"
	"github.com/rl1809/aspas/internal/logger"
	"github.com/rl1809/aspas/internal/metrics"
	"github.com/rl1809/aspas/internal/port"
)

const readHeaderTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		logger.Error(context.Background(), "aspas stopped", logger.ErrorF(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.AsJSON); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Ledger store
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info(ctx, "store ready", logger.String("driver", store.Dialect().Name()))

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	// Idempotency guard and reorder notifiers
	var guard port.RequestGuard = storage.NewMemoryGuard(cfg.Redis.IdempotencyTTL)
	notifiers := notify.Multi{notify.Log{}}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		defer rdb.Close()
		logger.Info(ctx, "connected to redis", logger.String("addr", cfg.Redis.Addr))

		redisAdapter := storage.NewRedisAdapter(rdb, cfg.Redis.IdempotencyTTL, cfg.Redis.ReorderChannel)
		guard = redisAdapter

		// Reorders are published once and logged by every subscribed instance.
		events, err := redisAdapter.SubscribeReorders(ctx)
		if err != nil {
			return err
		}
		go notify.Forward(ctx, events, notify.Log{})
		notifiers = notify.Multi{redisAdapter}
	}

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Services
	settings := service.Settings{
		IDs:            domain.NewIDGenerator(cfg.Shop.Code),
		Location:       loc,
		ReorderRatio:   cfg.Shop.ReorderRatio,
		CurrencySymbol: cfg.Shop.CurrencySymbol,
	}
	audit := service.NewAuditService(store, settings)
	reorder := service.NewReorderMonitor(store, audit, settings, m, notifiers)
	auth := service.NewAuthService(store, audit, m, cfg.Auth.BcryptCost)

	if cfg.Auth.SeedDefaultUsers {
		n, err := auth.EnsureDefaultUsers(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Warn(ctx, "seeded default credentials, change them before real use", logger.Int("users", n))
		}
	}

	svc := handler.Services{
		Auth:      auth,
		Sessions:  service.NewSessionRegistry(),
		Inventory: service.NewInventoryService(store, audit, settings),
		Sales:     service.NewSalesService(store, audit, reorder, guard, m, settings),
		Audit:     audit,
		Reports:   service.NewReportService(store, audit, settings),
		Store:     store,
	}

	// gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLogging()))
	salesrpc.RegisterSalesCounterServer(grpcServer, handler.NewGRPCHandler(svc))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return err
	}
	go func() {
		logger.Info(ctx, "gRPC server listening", logger.String("addr", cfg.Server.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error(ctx, "gRPC server error", logger.ErrorF(err))
		}
	}()

	// HTTP server
	r := chi.NewRouter()
	r.Use(middleware.Timeout(cfg.Store.OpTimeout))
	r.Mount("/", handler.NewHTTPHandler(svc).Router())

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", logger.String("addr", cfg.Server.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "HTTP server error", logger.ErrorF(err))
		}
	}()

	metricsServer := &http.Server{
		Addr:              cfg.Server.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		logger.Info(ctx, "metrics server listening", logger.String("addr", cfg.Server.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "metrics server error", logger.ErrorF(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "HTTP shutdown", logger.ErrorF(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(ctx, "metrics shutdown", logger.ErrorF(err))
	}
	grpcServer.GracefulStop()
	logger.Info(ctx, "servers stopped")
	return nil
}

func openStore(ctx context.Context, cfg config.Store) (*storage.SQLAdapter, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		return storage.OpenMySQL(ctx, cfg.MySQLDSN)
	default:
		return storage.OpenSQLite(ctx, cfg.SQLitePath)
	}
}
