package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/wordduel/internal/dependencies/clock"
	"github.com/mcoot/wordduel/internal/dependencies/idgen"
	"github.com/mcoot/wordduel/internal/dependencies/random"
	"github.com/mcoot/wordduel/internal/model"
	"github.com/mcoot/wordduel/internal/realtime"
	"github.com/mcoot/wordduel/internal/services/auth"
	"github.com/mcoot/wordduel/internal/services/dictionary"
	"github.com/mcoot/wordduel/internal/services/guard"
	"github.com/mcoot/wordduel/internal/services/history"
	"github.com/mcoot/wordduel/internal/services/lobby"
	"github.com/mcoot/wordduel/internal/services/session"
	"github.com/mcoot/wordduel/internal/storage"
	"github.com/mcoot/wordduel/internal/storage/memory"
	redisstorage "github.com/mcoot/wordduel/internal/storage/redis"
	"github.com/mcoot/wordduel/internal/storage/sqlstore"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock       clock.Clock
	Random      random.Random
	IDGenerator idgen.IDGenerator

	// Services
	DictionaryService *dictionary.Service
	Guard             *guard.Guard
	SessionController *session.Controller
	Coordinator       *lobby.Coordinator
	HistoryService    *history.Service
	AuthService       *auth.Service
	HubManager        *realtime.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// DictionaryPath is the path to the dictionary file (optional)
	// If empty, the dictionary is loaded from storage, or must be loaded manually
	DictionaryPath string
	// AuthConfig holds configuration for the auth service.
	// AuthConfig.Secret is required.
	AuthConfig auth.Config
	// GuardWindow is the minimum spacing between guesses of one player (optional)
	GuardWindow time.Duration
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend. If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the SQLite file or Postgres connection string
	// (required if StorageType is "sqlite" or "postgres")
	DatabaseURL string
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	authCfg := cfg.AuthConfig
	if authCfg.Issuer == "" {
		authCfg.Issuer = auth.DefaultConfig().Issuer
	}

	clk := clock.New()
	app, err := newWithDependencies(store, clk, random.New(), idgen.New(), authCfg, cfg.GuardWindow, logger)
	if err != nil {
		_ = closeStorage(store)
		return nil, err
	}

	if err := app.loadDictionary(ctx, cfg.DictionaryPath); err != nil {
		_ = app.Close()
		return nil, err
	}

	return app, nil
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite, StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DatabaseURL required when StorageType is %s", storageType)
		}
		driver := sqlstore.DriverSQLite
		if storageType == StorageTypePostgres {
			driver = sqlstore.DriverPostgres
		}
		return sqlstore.Open(ctx, sqlstore.Config{Driver: driver, DSN: cfg.DatabaseURL})
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be one of memory, redis, sqlite, postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	ids idgen.IDGenerator,
	authCfg auth.Config,
	guardWindow time.Duration,
	logger *slog.Logger,
) (*App, error) {
	authService, err := auth.New(clk, authCfg)
	if err != nil {
		return nil, err
	}

	dictService := dictionary.New(store, rnd, logger)
	moveGuard := guard.New(guardWindow)
	sessionController := session.NewController(store, dictService, moveGuard, clk, ids, logger)
	hubManager := realtime.NewHubManager(clk, logger)
	coordinator := lobby.NewCoordinator(sessionController, hubManager, clk, logger)
	sessionController.AddListener(coordinator)
	historyService := history.New(store, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		IDGenerator:       ids,
		DictionaryService: dictService,
		Guard:             moveGuard,
		SessionController: sessionController,
		Coordinator:       coordinator,
		HistoryService:    historyService,
		AuthService:       authService,
		HubManager:        hubManager,
	}, nil
}

// loadDictionary loads words from path, falling back to a list persisted by
// an earlier run. An empty store with no path is not an error; guesses and
// session creation fail until words are loaded.
func (a *App) loadDictionary(ctx context.Context, path string) error {
	if path != "" {
		return a.DictionaryService.LoadFromFile(ctx, path)
	}
	err := a.DictionaryService.LoadFromStorage(ctx)
	if errors.Is(err, model.ErrDictionaryNotLoaded) {
		return nil
	}
	return err
}

// Shutdown ends every live session and releases storage
func (a *App) Shutdown(ctx context.Context) error {
	_, closeErr := a.SessionController.ForceCloseOpenSessions(ctx)
	return errors.Join(closeErr, a.Close())
}

// Close releases storage connections
func (a *App) Close() error {
	return closeStorage(a.Storage)
}

func closeStorage(store storage.Storage) error {
	if closer, ok := store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
