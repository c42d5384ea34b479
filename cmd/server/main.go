// Command server runs the Lamu leaderboard HTTP API.
//
// @title        Lamu Leaderboard API
// @version      1.0
// @description  Score submission and ranked leaderboard reads for the Lamu memory game.
// @BasePath     /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/lamu-leaderboard/internal/config"
	httpapi "github.com/tbourn/lamu-leaderboard/internal/http"
	"github.com/tbourn/lamu-leaderboard/internal/observability"
	"github.com/tbourn/lamu-leaderboard/internal/repo"
	"github.com/tbourn/lamu-leaderboard/internal/sysutil"
)

const shutdownGrace = 10 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	version := sysutil.Version()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	store := openStore(ctx, cfg)
	defer func() { _ = store.Close() }()

	gin.SetMode(cfg.Server.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, store, cfg)

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("base_path", cfg.API.BasePath).
			Str("version", version).
			Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(sctx)
}

// openStore connects to Redis. A missing or unreachable store is logged but
// does not stop the server: requests report it as 500 and /health as 503.
func openStore(ctx context.Context, cfg config.Config) *repo.Store {
	var opts []repo.Option
	if cfg.OTEL.Enabled {
		opts = append(opts, repo.WithTracing())
	}

	store, err := repo.Open(cfg.Redis, opts...)
	if err != nil {
		log.Error().Err(err).Msg("ranking store not configured")
		return nil
	}

	pctx, cancel := context.WithTimeout(ctx, cfg.Redis.Timeout)
	defer cancel()
	if err := store.Ping(pctx); err != nil {
		log.Warn().Err(err).Str("namespace", store.Namespace()).Msg("ranking store unreachable at startup")
	} else {
		log.Info().Str("namespace", store.Namespace()).Msg("ranking store connected")
	}
	return store
}
