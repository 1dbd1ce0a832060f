package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mcoot/wordduel/internal/api"
	"github.com/mcoot/wordduel/internal/factory"
	"github.com/mcoot/wordduel/internal/services/auth"
	redisstorage "github.com/mcoot/wordduel/internal/storage/redis"
)

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("LOG_LEVEL")),
	}))
	slog.SetDefault(logger)

	cfg, err := configFromEnv(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create application factory
	app, err := factory.New(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !app.DictionaryService.IsLoaded() {
		logger.Warn("dictionary is empty; sessions cannot be created until words are loaded")
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		TokenVerifier:     app.AuthService,
		SessionController: app.SessionController,
		HistoryService:    app.HistoryService,
		RealtimeBinder:    app.Coordinator,
		IDGenerator:       app.IDGenerator,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	// Unfinished sessions end in a tie so no game is left dangling
	if err := app.Shutdown(context.Background()); err != nil {
		logger.Error("failed to close sessions", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// configFromEnv builds the factory config from environment variables
func configFromEnv(logger *slog.Logger) (factory.Config, error) {
	authCfg := auth.DefaultConfig()
	authCfg.Secret = []byte(os.Getenv("JWT_SECRET"))

	cfg := factory.Config{
		DictionaryPath: getEnvOrDefault("DICTIONARY_PATH", "data/words.txt"),
		AuthConfig:     authCfg,
		Logger:         logger,
		StorageType:    os.Getenv("STORAGE_TYPE"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	if window := os.Getenv("MOVE_GUARD_WINDOW"); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return cfg, err
		}
		cfg.GuardWindow = d
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = getEnvOrDefault("REDIS_URL", redisCfg.URL)
		cfg.RedisConfig = &redisCfg
	}

	return cfg, nil
}

func logLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
