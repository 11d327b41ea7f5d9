package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"subscribe-payflow/internal/application"
	"subscribe-payflow/internal/config"
	"subscribe-payflow/internal/infra/analytics"
	"subscribe-payflow/internal/infra/clientconfig"
	pg "subscribe-payflow/internal/infra/db/postgres"
	httpapi "subscribe-payflow/internal/infra/http"
	"subscribe-payflow/internal/infra/logging"
	"subscribe-payflow/internal/infra/metrics"
	red "subscribe-payflow/internal/infra/redis"
	"subscribe-payflow/internal/infra/scheduler"
	"subscribe-payflow/internal/usecase"
)

// set via -ldflags
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] enabled")
	}

	if cfg.Metrics.Enabled {
		metrics.MustRegister()
		metrics.SetBuildInfo(version, commit)
	}

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if cfg.Metrics.Enabled {
		go pg.ReportPoolStats(ctx, pool, 15*time.Second)
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	storage := red.NewStorage(redisClient, cfg.Redis.Prefix, cfg.Payflow.SessionTTL)
	entitlements := red.NewEntitlementsManager(redisClient, cfg.Redis.Prefix, cfg.Redis.TTL, logger)
	locker := red.NewResponseLock(redisClient, cfg.Redis.Prefix, cfg.HTTP.RequestTimeout)

	purchases := pg.NewBreakerPurchaseLog(pg.NewPurchaseLogRepo(pool), cfg.Database.BreakerFailures, cfg.Database.BreakerTimeout, logger)

	// ---- Shared adapters ----
	shared := application.SharedDeps{
		Events:       analytics.NewEventManager(logger),
		Entitlements: entitlements,
		Storage:      storage,
		ClientConfig: clientconfig.NewManager(cfg.Payflow.PublicationID, cfg.ClientConfig, redisClient, cfg.Redis.Prefix, logger),
		Errors:       analytics.NewErrorReporter(logger),
		Purchases:    purchases,
		Locker:       locker,
		EntitleState: entitlements,
	}
	rtCfg := usecase.RuntimeConfig{
		PublicationID:   cfg.Payflow.PublicationID,
		FrontendBaseURL: cfg.Payflow.FrontendBaseURL,
		WindowOpenMode:  cfg.Payflow.WindowOpenMode,
		PayEnvironment:  cfg.Payflow.PayEnvironment,
		PlayEnvironment: cfg.Payflow.PlayEnvironment,
		ClientVersion:   cfg.Payflow.ClientVersion,
		InlineCTA:       cfg.Payflow.InlineCTA.Enabled,
		InlineConfigID:  cfg.Payflow.InlineCTA.ConfigID,
	}
	facade := application.NewPayflowFacade(shared, rtCfg, application.Options{
		PayURL:     cfg.Payflow.PayURL,
		ReturnURL:  cfg.Payflow.ReturnURL,
		SessionTTL: cfg.Payflow.SessionTTL,
	}, logger)

	// ---- Session sweeper ----
	sweeper := scheduler.NewScheduler("session_sweep", cfg.Payflow.SweepInterval, scheduler.JobFunc(facade.Sweep), logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	// ---- HTTP ----
	srv := httpapi.NewServer(cfg.HTTP, cfg.Metrics, facade, purchases, map[string]httpapi.Pinger{
		"postgres": pool,
		"redis":    redisClient,
	}, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
