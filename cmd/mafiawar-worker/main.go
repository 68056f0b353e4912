package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"mafiawar/internal/config"
	"mafiawar/internal/content"
	"mafiawar/internal/db"
	"mafiawar/internal/economy"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
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

	// Long TTLs: the worker forces refreshes on its own schedule.
	prices := economy.NewPriceCache(pool, logger, catalog, time.Hour, time.Hour)
	ledger := economy.NewLedger(pool, logger, catalog, prices)

	refreshPrices := func() {
		jobCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()
		if err := prices.RefreshAll(jobCtx); err != nil {
			logger.Error("price refresh failed", "err", err)
			return
		}
		logger.Info("prices refreshed")
	}
	applyInterest := func() {
		jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()
		credited, err := ledger.ApplyDailyInterest(jobCtx)
		if err != nil {
			logger.Error("interest run failed", "err", err)
			return
		}
		logger.Info("interest applied", "accounts", credited)
	}

	if cfg.RunOnStart {
		refreshPrices()
		applyInterest()
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.PriceCron, refreshPrices); err != nil {
		logger.Error("price cron invalid", "spec", cfg.PriceCron, "err", err)
		os.Exit(1)
	}
	if _, err := c.AddFunc(cfg.InterestCron, applyInterest); err != nil {
		logger.Error("interest cron invalid", "spec", cfg.InterestCron, "err", err)
		os.Exit(1)
	}
	c.Start()

	logger.Info("worker started", "price_cron", cfg.PriceCron, "interest_cron", cfg.InterestCron)
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("worker shutdown")
}
