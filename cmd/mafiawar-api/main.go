package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mafiawar/internal/api"
	"mafiawar/internal/auth"
	"mafiawar/internal/config"
	"mafiawar/internal/content"
	"mafiawar/internal/db"
	"mafiawar/internal/economy"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
	})
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	catalog, err := content.Load(cfg.ContentFile)
	if err != nil {
		logger.Error("content load failed", "err", err)
		os.Exit(1)
	}

	prices := economy.NewPriceCache(pool, logger, catalog, cfg.PriceCacheTTL, cfg.PricePersistTTL)
	if cfg.StartupSeedPrices {
		if err := prices.Seed(ctx); err != nil {
			logger.Error("price seed failed", "err", err)
			os.Exit(1)
		}
	}

	ledger := economy.NewLedger(pool, logger, catalog, prices)
	jail := economy.NewJail(pool, logger, ledger, cfg.JailCooldownFrac)
	crimes := economy.NewCrimes(pool, logger, catalog, ledger, jail)
	assets := economy.NewAssets(pool, logger, catalog, ledger)

	server := api.New(cfg, logger, auth.NewVerifier(cfg.ServiceToken), api.Services{
		Content: catalog,
		Ledger:  ledger,
		Jail:    jail,
		Crimes:  crimes,
		Assets:  assets,
		Prices:  prices,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("mafiawar api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
