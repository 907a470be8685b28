package app

import (
	"context"
	"log/slog"
	"sync"

	"platwatch/internal/domain"
	"platwatch/internal/infra"
	"platwatch/internal/infra/market"
	"platwatch/internal/infra/storage"

	"time"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Market     *market.Client
	Downloader *infra.IconDownloader
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB,
// market client).
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping PlatWatch...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Market API client
	b.Market = market.NewClient(market.Options{
		BaseURL:  cfg.Market.BaseURL,
		Platform: cfg.Market.Platform,
		Timeout:  time.Duration(cfg.Market.TimeoutSec) * time.Second,
	})
	slog.Info("✅ Market client ready", slog.String("base_url", cfg.Market.BaseURL))

	// 5. Icon downloader (optional)
	if cfg.Icons.Enabled {
		downloader, err := infra.NewIconDownloader(cfg.Icons.CDNURL)
		if err != nil {
			return err
		}
		b.Downloader = downloader
		slog.Info("✅ Icon downloader ready")
	}

	return nil
}

// SyncIcons downloads missing item thumbnails in the background. It is
// best-effort: a failed icon never blocks or degrades the refresh loop.
func (b *Bootstrap) SyncIcons(ctx context.Context, entries []domain.CatalogEntry) {
	if b.Downloader == nil {
		return
	}
	slog.Info("🔄 Starting icon synchronization...", slog.Int("items", len(entries)))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, entry := range entries {
		if entry.Thumb == "" {
			continue
		}
		wg.Add(1)
		go func(e domain.CatalogEntry) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			if _, err := b.Downloader.EnsureIcon(e.URLName, e.Thumb); err != nil {
				slog.Debug("Failed to download icon",
					slog.String("item", e.URLName),
					slog.String("error", err.Error()))
			}
		}(entry)
	}

	wg.Wait()
	slog.Info("✨ Icon synchronization completed")
}
