package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/clock"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/config"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/infra"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/router"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger, dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
	if err := infra.RunMigrations(migrateCtx, db); err != nil {
		migrateCancel()
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	migrateCancel()

	var rdb *redis.Client
	if cfg.SequenceBackend == config.SequenceRedis {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
	}

	seqCB := infra.NewCircuitBreaker(cfg.Breaker(), clock.NewSystem())

	r, err := router.New(cfg, db, rdb, seqCB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().
			Str("sequence_backend", cfg.SequenceBackend).
			Str("timezone", cfg.Timezone).
			Msgf("POS settlement service listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
