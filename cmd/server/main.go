package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"news-search-api/internal/auth"
	"news-search-api/internal/cache"
	"news-search-api/internal/config"
	"news-search-api/internal/database"
	"news-search-api/internal/handlers"
	"news-search-api/internal/logger"
	"news-search-api/internal/news"
	"news-search-api/internal/realtime"
	"news-search-api/internal/routes"
	"news-search-api/internal/stats"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		l := logger.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: "news-search-api",
	})
	log := logger.L()
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	client := news.NewGNewsClient(cfg.Upstream.BaseURL, cfg.Upstream.APIKey, cfg.Upstream.Timeout, nil)
	if !client.HasAPIKey() {
		log.Warn().Msg("GNEWS_API_KEY is not set, upstream calls will likely fail")
	}

	store := cache.NewStore[string, []byte](cache.Options{
		MaxEntries: cfg.Cache.MaxEntries,
		TTL:        cfg.Cache.TTL,
	})
	defer store.Clear()

	db, err := database.Open(cfg.Stats.DSN, gormlogger.Warn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open stats database")
	}
	defer database.Close(db)

	recorder := stats.NewRecorder(db, cfg.Stats.Retention, cfg.Stats.Buffer)
	hub := realtime.NewHub()

	gateway := news.NewGateway(client, store,
		news.WithTTL(cfg.Cache.TTL),
		news.WithObserver(recorder),
		news.WithObserver(hub),
	)

	var tokens *auth.TokenManager
	if cfg.Auth.Enabled {
		tokens = auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	}

	router := routes.SetupRoutes(routes.Dependencies{
		News:   handlers.NewNewsHandler(gateway),
		Stats:  handlers.NewStatsHandler(recorder, store, store.MaxEntries(), hub.Subscribers),
		Feed:   handlers.NewLookupFeedHandler(hub),
		Tokens: tokens,
		Logger: log,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("upstream", cfg.Upstream.BaseURL).
			Dur("cache_ttl", cfg.Cache.TTL).
			Int("cache_max_entries", cfg.Cache.MaxEntries).
			Bool("auth", cfg.Auth.Enabled).
			Msg("news-search-api starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return cache.RunJanitor(gctx, store, cfg.Cache.PurgeInterval)
	})
	g.Go(func() error {
		return cache.RunJanitor(gctx, recorder, cfg.Cache.PurgeInterval)
	})
	g.Go(func() error {
		return recorder.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}
