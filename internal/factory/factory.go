package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/dutyledger/internal/dependencies/clock"
	"github.com/mcoot/dutyledger/internal/dependencies/ids"
	"github.com/mcoot/dutyledger/internal/metrics"
	"github.com/mcoot/dutyledger/internal/services/ledger"
	"github.com/mcoot/dutyledger/internal/services/processlog"
	"github.com/mcoot/dutyledger/internal/services/projection"
	"github.com/mcoot/dutyledger/internal/services/query"
	"github.com/mcoot/dutyledger/internal/services/registry"
	"github.com/mcoot/dutyledger/internal/storage"
	"github.com/mcoot/dutyledger/internal/storage/memory"
	redisstorage "github.com/mcoot/dutyledger/internal/storage/redis"
	sqlitestorage "github.com/mcoot/dutyledger/internal/storage/sqlite"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock   clock.Clock
	IDs     ids.Generator
	Metrics *metrics.Metrics

	// Services
	RegistryService   *registry.Service
	ProjectionService *projection.Service
	LedgerService     *ledger.Service
	QueryService      *query.Service
	ProcessLogService *processlog.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// ProcessLogLimit caps retained process log entries on every backend.
	// Zero keeps everything (Redis falls back to its own config).
	ProcessLogLimit int64
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	return newWithDependencies(store, clock.New(), ids.New(), logger), nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(memory.WithProcessLogLimit(cfg.ProcessLogLimit)), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisCfg := *cfg.RedisConfig
		if cfg.ProcessLogLimit > 0 {
			redisCfg.ProcessLogMaxEntries = cfg.ProcessLogLimit
		}
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			return nil, err
		}
		return redisStore, nil
	case StorageTypeSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath, sqlitestorage.WithProcessLogLimit(cfg.ProcessLogLimit))
		if err != nil {
			return nil, err
		}
		return sqliteStore, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, idGen ids.Generator, logger *slog.Logger) *App {
	m := metrics.New()

	projectionService := projection.New(store)
	registryService := registry.New(store, clk, idGen, m, logger)
	ledgerService := ledger.New(store, projectionService, idGen, m, logger)
	queryService := query.New(store, projectionService)
	processLogService := processlog.New(store, clk, idGen, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		IDs:               idGen,
		Metrics:           m,
		RegistryService:   registryService,
		ProjectionService: projectionService,
		LedgerService:     ledgerService,
		QueryService:      queryService,
		ProcessLogService: processLogService,
	}
}

// Close releases the storage backend, if it holds any resources
func (a *App) Close() error {
	if c, ok := a.Storage.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
