package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"travel_guide/internal/adapters/auth"
	server "travel_guide/internal/adapters/http_server"
	"travel_guide/internal/adapters/observability"
	redisad "travel_guide/internal/adapters/redis"
	"travel_guide/internal/adapters/uploads"
	"travel_guide/internal/app"
	"travel_guide/internal/shared"
	"travel_guide/internal/storage"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	repo, closeStore, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store connection failed")
	}
	defer closeStore()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store connection ok")

	throttle := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.LoginMaxAttempts, cfg.LoginLockout)
	defer throttle.Close()
	if err := throttle.Ping(ctx); err != nil {
		// the throttle fails open, so a missing Redis only degrades login protection
		log.Warn().Err(err).Msg("redis unavailable; login throttling disabled until it recovers")
	}

	photos, err := uploads.NewDiskStore(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("uploads dir")
	}
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	srv := server.New(server.Options{RequestTimeout: cfg.RequestTimeout, CORSOrigins: cfg.CORSOrigins})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Catalog:        app.NewCatalogService(repo),
		Ratings:        app.NewRatingService(repo),
		Accounts:       app.NewAuthService(repo, auth.NewBcryptHasher(auth.DefaultCost), tokens, photos, throttle),
		Tokens:         tokens,
		UploadsDir:     photos.Dir(),
		UploadMaxBytes: cfg.UploadMaxBytes,
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
