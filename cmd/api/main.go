package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "restroom_radar/internal/adapters/http_server"
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

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// store
	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store unavailable")
	}
	defer closeStore()
	log.Info().Str("driver", cfg.StoreDriver).Msg("database connection ok")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; snapshot cache will miss")
	}

	// snapshot; the API still starts without one and answers 503 until a refresh succeeds
	catalog := app.NewCatalog(repo, cache, cfg.CacheTTL)
	if err := catalog.Refresh(ctx); err != nil {
		log.Error().Err(err).Msg("initial snapshot load failed")
	} else {
		snap := catalog.Snapshot()
		log.Info().Int("records", snap.Len()).Str("source", snap.Source).Msg("snapshot loaded")
	}
	go catalog.Run(ctx, cfg.SnapshotRefresh)

	search := app.NewSearchService(catalog, app.SearchOptions{
		Unit:         cfg.Unit,
		WalkingSpeed: cfg.WalkingSpeed,
		MaxGroups:    cfg.MaxGroups,
	})

	// http
	srv := server.New(cfg.RateLimitRPS, cfg.TrustProxy)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: search, Snapshots: catalog, DefaultRadius: cfg.DefaultRadius})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("unit", string(cfg.Unit)).
		Float64("default_radius", cfg.DefaultRadius).
		Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
