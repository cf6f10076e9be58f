package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"restroom_radar/internal/adapters/observability"
	redisad "restroom_radar/internal/adapters/redis"
	"restroom_radar/internal/app"
	"restroom_radar/internal/shared"
	"restroom_radar/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("driver", cfg.StoreDriver).
		Int("workers", cfg.SummaryWorkers).
		Int("batch", cfg.SummaryBatch).
		Msg("summary backfill starting")

	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store unavailable")
	}
	defer closeStore()

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	catalog := app.NewCatalog(repo, cache, cfg.CacheTTL)
	svc := app.NewSummaryService(repo, catalog, cfg.SummaryWorkers)

	// walks every page of missing summaries, SummaryBatch rows at a time
	rep, err := svc.Backfill(ctx, cfg.SummaryBatch)
	if err != nil {
		log.Error().Err(err).
			Int("scanned", rep.Scanned).
			Int("updated", rep.Updated).
			Int("failed", rep.Failed).
			Msg("summary backfill aborted")
		os.Exit(1)
	}
	log.Info().
		Int("scanned", rep.Scanned).
		Int("updated", rep.Updated).
		Int("failed", rep.Failed).
		Msg("summary backfill completed")
	if rep.Failed > 0 {
		os.Exit(1)
	}
}
