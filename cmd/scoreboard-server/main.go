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
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mkraus12/courtside/internal/assets"
	"github.com/mkraus12/courtside/internal/config"
	"github.com/mkraus12/courtside/internal/saves"
	"github.com/mkraus12/courtside/internal/server"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}

	cfg, err := config.Load(getEnv("COURTSIDE_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	savesStore, err := saves.Open(cfg.Server.SavesDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open saves store")
	}
	defer savesStore.Close()

	assetStore, err := assets.Open(cfg.Server.AssetsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open asset store")
	}

	srv := server.New(savesStore, assetStore, clockwork.NewRealClock(), cfg.Server.StaticDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.Run(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown was not clean")
		}
	}()

	log.Info().Str("addr", cfg.Server.Addr).Msg("scoreboard server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
