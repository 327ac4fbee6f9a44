package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "stayscout/internal/adapters/http_server"
	"stayscout/internal/adapters/observability"
	"stayscout/internal/adapters/pixabay"
	redisad "stayscout/internal/adapters/redis"
	"stayscout/internal/adapters/serpapi"
	"stayscout/internal/app"
	"stayscout/internal/domain"
	"stayscout/internal/mockdata"
	"stayscout/internal/shared"
	"stayscout/internal/state"
	mysqlrepo "stayscout/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// providers
	provider := serpapi.New(cfg.SerpBase, cfg.ProviderRPS, cfg.ProviderTimeout)
	images := pixabay.New(cfg.PixabayBase, cfg.ProviderRPS, cfg.ProviderTimeout)
	mock := mockdata.New(cfg.MockSeed)

	// cache
	var cache domain.Cache
	var rc *redisad.Cache
	if cfg.RedisAddr != "" {
		rc = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed; continuing without cache")
		} else {
			cache = rc
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
		}
	}

	trail := app.NewFallbackTrail(100)
	recorders := []domain.FallbackRecorder{app.MetricsRecorder{}, trail}
	var fallbacks server.FallbackLister = trail

	// state backend
	var persister domain.Persister
	switch cfg.StateBackend {
	case "redis":
		if cache == nil {
			log.Fatal().Msg("STATE_BACKEND=redis requires a reachable REDIS_ADDR")
		}
		persister = rc
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		log.Info().Msg("database connection ok")
		repo := mysqlrepo.New(db)
		persister = repo
		recorders = append(recorders, repo)
		fallbacks = repo
	case "memory":
	default:
		fp, err := state.NewFilePersister(cfg.StateDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.StateDir).Msg("state dir unusable")
		}
		persister = fp
	}

	store := state.Open(ctx, persister,
		state.WithName(cfg.StateName),
		state.WithFencing(cfg.FenceSearch),
		state.WithBackend(cfg.StateBackend),
	)

	svc := app.NewSearchService(provider, images, mock, cache, app.SearchConfig{
		Keys:           app.Keys{SerpAPI: cfg.SerpAPIKey, Pixabay: cfg.PixabayKey},
		MockCount:      cfg.MockCount,
		CacheTTL:       cfg.CacheTTL,
		MinQueryLength: cfg.SuggestMinLength,
		SuggestImages:  cfg.SuggestImages,
	}, recorders...)
	sess := app.NewSession(svc, store, cfg.SuggestDelay, cfg.ProviderTimeout)

	// http
	srv := server.New(cfg.RateLimit)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{S: sess, Fallbacks: fallbacks})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("state", cfg.StateBackend).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	sess.Close()
	store.Close()
	if rc != nil {
		_ = rc.Close()
	}
}
