package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/doanchu/internal/config"
	"github.com/robalobadob/doanchu/internal/httpserver"
	"github.com/robalobadob/doanchu/internal/store"
	"github.com/robalobadob/doanchu/internal/words"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	bank, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("failed to load word bank")
	}
	stats := bank.Stats()
	log.Info().
		Int("easy", stats[words.Easy]).
		Int("medium", stats[words.Medium]).
		Int("hard", stats[words.Hard]).
		Msg("word bank loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemory()
	go mem.Run(ctx, time.Minute, cfg.SessionTTL)

	srv := httpserver.New(cfg, bank, mem)
	log.Info().Str("port", cfg.Port).Str("origin", cfg.ClientOrigin).Msg("starting doanchu server")
	if err := srv.Start(ctx, cfg.Addr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func setupLogging(cfg *config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
