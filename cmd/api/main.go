package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"crypto-payments/config"
	httpHandler "crypto-payments/internal/adapter/http/handler"
	pgStorage "crypto-payments/internal/adapter/storage/postgres"
	redisStorage "crypto-payments/internal/adapter/storage/redis"
	"crypto-payments/internal/core/ports"
	"crypto-payments/internal/service"
	"crypto-payments/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CPAY_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Int("networks", len(cfg.Networks)).
		Msg("Starting crypto payments service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// PostgreSQL
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
	}

	// Redis
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	invoiceRepo := pgStorage.NewInvoiceRepo(pool)
	txRepo := pgStorage.NewTransactionRepo(pool)
	var rateRepo ports.ExchangeRateRepository = pgStorage.NewExchangeRateRepo(pool)
	if cfg.Rates.CacheTTL > 0 {
		rateRepo = redisStorage.NewRateCache(rateRepo, rdb, cfg.Rates.CacheTTL, log)
	}

	// Networks
	clients, readers, closeNetworks, err := buildNetworks(ctx, cfg.Networks, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize networks")
	}
	defer closeNetworks()

	// Core services
	security, err := service.NewSecurityProvider(cfg.Security.Provider, cfg.Security.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize security provider")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	walletSvc := service.NewWalletService(walletRepo, clients, security, log)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, rateRepo, walletSvc, clients, log)
	reconciler := service.NewReconcilerService(invoiceRepo, walletRepo, txRepo, readers, log)
	transferSvc := service.NewTransferService(walletSvc, clients, security, log)
	rateSvc := service.NewRateService(rateRepo, log)

	if cfg.Server.Mode == gin.ReleaseMode || cfg.Server.Mode == gin.TestMode {
		gin.SetMode(cfg.Server.Mode)
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		InvoiceSvc:     invoiceSvc,
		Reconciler:     reconciler,
		Wallets:        walletSvc,
		TransferSvc:    transferSvc,
		RateSvc:        rateSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
		},
		Logger: log,
	})

	var wg sync.WaitGroup
	if cfg.Reconciler.Enabled {
		poller := service.NewPoller(invoiceRepo, reconciler, redisStorage.NewLeaseStore(rdb), service.PollerConfig{
			Interval:  cfg.Reconciler.Interval,
			BatchSize: cfg.Reconciler.BatchSize,
			Workers:   cfg.Reconciler.Workers,
			LeaseTTL:  cfg.Reconciler.LeaseTTL,
		}, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()

	log.Info().Msg("Server exited")
}
