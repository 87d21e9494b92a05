package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/kwazam-backend/internal/config"
	"github.com/rocketscienceinc/kwazam-backend/internal/repository"
	"github.com/rocketscienceinc/kwazam-backend/internal/repository/storage"
	"github.com/rocketscienceinc/kwazam-backend/internal/repository/storage/sqlite"
	"github.com/rocketscienceinc/kwazam-backend/internal/usecase"
	"github.com/rocketscienceinc/kwazam-backend/transport/rest"
	"github.com/rocketscienceinc/kwazam-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := sqlite.New(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open archive storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close archive storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init archive storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	archiveRepo := repository.NewArchiveRepository(sqliteStorage.Connection)

	hub := websocket.NewHub(logger)
	gameManager := usecase.NewGameManager(logger, playerRepo, gameRepo, archiveRepo, hub)
	hub.SetGameplay(gameManager)

	server := rest.New(logger, conf.HTTP, gameManager, hub.Register)

	httpErrCh := make(chan error, 1)
	go func() {
		if httpErr := server.Start(conf.HTTPPort); httpErr != nil {
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server did not stop cleanly", "error", err)
	}

	return nil
}
