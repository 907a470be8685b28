package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"platwatch/internal/api"
	"platwatch/internal/app"
	"platwatch/internal/engine"
)

func main() {
	// Local overrides for development; missing .env is fine.
	_ = godotenv.Load()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Engine wiring: cache, record store, dual-queue scheduler
	cache := engine.NewPriceCache(bootstrap.Market)
	store := engine.NewRecordStore()

	hub := api.NewHub()
	store.SetListener(hub)

	sched := engine.NewScheduler(bootstrap.Market, cache, store, engine.SchedulerOptions{
		Worker: engine.WorkerOptions{
			RequestDelay: time.Duration(cfg.Market.RequestDelayMS) * time.Millisecond,
			CycleDelay:   time.Duration(cfg.Market.CycleDelayMS) * time.Millisecond,
			MaxRetries:   cfg.Market.MaxRetries,
		},
		FilterDelay: time.Duration(cfg.Filter.DebounceMS) * time.Millisecond,
	})

	// 4. Catalog load, pre-populated from the previous session
	saved, err := bootstrap.Storage.LoadRecords()
	if err != nil {
		slog.Warn("Failed to load saved records", slog.Any("error", err))
	}
	entries, err := sched.LoadCatalog(ctx, saved)
	if err != nil {
		slog.Error("❌ Catalog load failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 5. Background icon sync (never blocks the refresh loop)
	go bootstrap.SyncIcons(ctx, entries)

	// 6. Start the refresh workers
	sched.Start(ctx)
	slog.Info("✅ Refresh scheduler started", slog.Int("items", store.Len()))

	// 7. Display-layer API server
	server := api.NewServer(store, sched, bootstrap.Storage, hub)
	go func() {
		if err := server.Run(ctx, cfg.Server.Addr); err != nil {
			slog.Error("API server failed", slog.Any("error", err))
			stop()
		}
	}()

	slog.Info("✨ PlatWatch fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.Info("👋 Shutting down gracefully...")
	sched.Wait()

	// Persist the latest records for the next session
	if err := bootstrap.Storage.SaveRecords(store.Snapshot()); err != nil {
		slog.Error("Failed to save records", slog.Any("error", err))
	} else {
		slog.Info("✅ Records saved", slog.Int("count", store.Len()))
	}
}
