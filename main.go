package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/assets"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/config"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/content"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/games"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/httpserver"
	"github.com/miguelmoralesr13/learnplay-engage-d62b7bde-sub000/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	setupLogging(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	lib, err := content.LoadWithOverride(cfg.ContentDir, assets.Content())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load content")
	}
	if err := lib.Validate(); err != nil {
		log.Fatal().Err(err).Msg("content tables are invalid")
	}
	log.Info().Interface("tables", lib.Stats()).Msg("content loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	mem := store.NewMemory(cfg.SessionIdleTTL)
	if cfg.SessionIdleTTL > 0 {
		mem.Start(cfg.SessionIdleTTL / 2)
	}
	defer mem.Stop()

	srv := httpserver.New(httpserver.Deps{
		Config:   cfg,
		Registry: games.NewRegistry(lib),
		Sessions: mem,
		DB:       db,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting learnplay server")
		errCh <- srv.Start(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
}
