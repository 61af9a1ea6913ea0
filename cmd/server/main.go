package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/commonfund/ledgerd/api/handler"
	"github.com/commonfund/ledgerd/internal/config"
	"github.com/commonfund/ledgerd/internal/infrastructure/journal"
	"github.com/commonfund/ledgerd/internal/infrastructure/monitor"
	pgInfra "github.com/commonfund/ledgerd/internal/infrastructure/postgres"
	redisInfra "github.com/commonfund/ledgerd/internal/infrastructure/redis"
	"github.com/commonfund/ledgerd/internal/middleware"
	"github.com/commonfund/ledgerd/internal/router"
	"github.com/commonfund/ledgerd/internal/services"
	"github.com/commonfund/ledgerd/internal/services/lifecycle"
	"github.com/commonfund/ledgerd/pkg/httpcontext"
	"github.com/commonfund/ledgerd/pkg/logger"
	"github.com/commonfund/ledgerd/repository/postgres"
	redisRepo "github.com/commonfund/ledgerd/repository/redis"
	effortUC "github.com/commonfund/ledgerd/usecase/effort"
	"github.com/commonfund/ledgerd/usecase/membership"
	treasuryUC "github.com/commonfund/ledgerd/usecase/treasury"
	"github.com/commonfund/ledgerd/usecase/vault"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	journalStore, err := journal.Open(cfg.Journal.Path, "journal")
	if err != nil {
		zapLogger.Fatal("failed to open event journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return journalStore.Close()
	})

	mon := monitor.New(pool, redisClient, journalStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	memberRepo := postgres.NewMemberRepository(pool)
	effortRepo := postgres.NewEffortRepository(pool)
	treasuryRepo := postgres.NewTreasuryRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	activityCache := redisRepo.NewActivityCache(redisClient, cfg.Redis.ActivityTTL)

	treasury := treasuryUC.New(treasuryRepo, zapLogger)
	registry := membership.New(memberRepo, activityCache, treasury, membership.Config{
		MaxMembers:      cfg.Membership.MaxMembers,
		SubscriptionFee: cfg.Membership.SubscriptionFee,
		PenaltyRate:     cfg.Membership.PenaltyRate,
		BillingPeriod:   cfg.Membership.BillingPeriod,
	}, zapLogger)

	journalWriter := services.NewJournalWriter(
		journalStore,
		mon,
		eventRepo,
		zapLogger,
		services.WriterConfig{
			Interval:   cfg.Journal.DrainInterval,
			BatchSize:  50,
			MaxRetries: cfg.Journal.MaxRetry,
		},
	)
	journalWriter.Start()
	manager.Register("journal_writer", func(ctx context.Context) error {
		journalWriter.Stop(ctx)
		return nil
	})

	sweeper := services.NewAccrualSweeper(registry, zapLogger, services.AccrualConfig{
		Interval: cfg.Membership.AccrualSweepInterval,
	})
	sweeper.Start()
	manager.Register("accrual_sweeper", func(ctx context.Context) error {
		sweeper.Stop(ctx)
		return nil
	})

	ledger := effortUC.New(
		effortRepo,
		eventRepo,
		registry,
		treasury,
		vault.New(registry, zapLogger),
		journalWriter,
		effortUC.Config{
			MinDepositCents: cfg.Ledger.MinDepositCents,
			ConfirmWindow:   cfg.Ledger.ConfirmWindow,
		},
		zapLogger,
	)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(registry, ctxAdapter, zapLogger, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		Member:   apiHandler.NewMemberHandler(registry, ctxAdapter, zapLogger),
		Effort:   apiHandler.NewEffortHandler(ledger, ctxAdapter, zapLogger),
		Treasury: apiHandler.NewTreasuryHandler(treasury, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
