package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"FastNotes/internal/config"
	"FastNotes/internal/database"
	"FastNotes/internal/logger"
	"FastNotes/internal/notes"
	"FastNotes/internal/server"
	"FastNotes/internal/storage"
)

func main() {
	configFile := flag.StringP("config", "c", os.Getenv("NOTES_CONFIG"), "optional YAML config file")
	flag.Parse()

	envPath, envErr := config.LoadEnv()

	cfg, err := config.Load(*configFile)
	if err != nil {
		boot := logger.New(logger.Config{})
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.Log)
	if envErr != nil {
		log.Warn().Err(envErr).Msg("continuing with system environment variables")
	} else {
		log.Info().Str("path", envPath).Msg("loaded .env")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server gracefully stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}()

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	log.Info().Msg("migrations completed")

	flashes, err := storage.NewMemoryStorage(storage.DefaultCacheSize, storage.DefaultTTL)
	if err != nil {
		return err
	}

	store := database.NewStore(db, log)
	svc := notes.NewService(store, cfg.Pagination, log)
	app := server.New(cfg, svc, flashes, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")
		return app.Listen(cfg.HTTP.Addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")
		return app.ShutdownWithTimeout(cfg.HTTP.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
