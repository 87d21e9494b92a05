package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/kwazam-backend/internal"
	"github.com/rocketscienceinc/kwazam-backend/internal/config"
)

// configPathEnv - overrides the default ./config.yml.
const configPathEnv = "KWAZAM_CONFIG"

// main - is the entry point of the game server. It initializes the configuration, logger, and runs the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := initConfig()
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize config.
func initConfig() *config.Config {
	if path := os.Getenv(configPathEnv); path != "" {
		return config.MustLoad(path)
	}

	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, "./config.yml"))
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	logger := config.NewLogger(conf.LogLevel, os.Stdout).With("app", "kwazam-server")

	logger.Info("configuration loaded",
		"http_port", conf.HTTPPort,
		"redis", conf.Redis.GetRedisAddr(),
		"archive", conf.SQLiteStoragePath,
	)

	return logger
}
