package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stayscout/internal/adapters/observability"
	"stayscout/internal/adapters/pixabay"
	redisad "stayscout/internal/adapters/redis"
	"stayscout/internal/adapters/serpapi"
	"stayscout/internal/app"
	"stayscout/internal/mockdata"
	"stayscout/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	dests := app.ParseDestinations(cfg.PrefetchDestinations)
	log.Info().
		Int("workers", cfg.PrefetchWorkers).
		Int("destinations", len(dests)).
		Msg("prefetch starting")

	if cfg.RedisAddr == "" {
		log.Fatal().Msg("REDIS_ADDR is required; prefetch only fills the result cache")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("redis ping failed")
	}

	svc := app.NewSearchService(
		serpapi.New(cfg.SerpBase, cfg.ProviderRPS, cfg.ProviderTimeout),
		pixabay.New(cfg.PixabayBase, cfg.ProviderRPS, cfg.ProviderTimeout),
		mockdata.New(cfg.MockSeed),
		cache,
		app.SearchConfig{
			Keys:      app.Keys{SerpAPI: cfg.SerpAPIKey, Pixabay: cfg.PixabayKey},
			MockCount: cfg.MockCount,
			CacheTTL:  cfg.CacheTTL,
		},
		app.MetricsRecorder{},
	)
	pre := app.NewPrefetchService(svc)

	workers := cfg.PrefetchWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, d := range dests {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(d app.Destination) {
			defer wg.Done()
			defer sem.Release(1)

			wctx, cancel := context.WithTimeout(ctx, cfg.ProviderTimeout)
			defer cancel()
			if err := pre.Warm(wctx, d); err != nil {
				failed.Add(1)
				log.Warn().Str("destination", d.Name).Err(err).Msg("prefetch failed")
			}
		}(d)
	}

	wg.Wait()
	log.Info().Int("destinations", len(dests)).Int32("failed", failed.Load()).Msg("prefetch completed")
}
