package backend

import (
	"context"
	"fmt"

	"tally/internal/kv/memory"
	"tally/internal/kv/redisstore"
	applog "tally/internal/log"
	"tally/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new store factory.
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateStore implements Factory.CreateStore.
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if !config.Type.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", config.Type)
	}

	switch config.Type {
	case SQLite:
		return f.createSQLiteStore(config)
	case Redis:
		return f.createRedisStore(ctx, config)
	case Memory:
		return f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	f.logger.Info("Initialized sqlite session store",
		applog.FieldBackend, SQLite.String(),
		"db_path", config.SQLiteDBPath)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createRedisStore(ctx context.Context, config Config) (*Result, error) {
	store, err := redisstore.New(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("initialize redis store: %w", err)
	}

	f.logger.Info("Initialized redis session store",
		applog.FieldBackend, Redis.String(),
		"addr", config.RedisAddr,
		"db", config.RedisDB)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createMemoryStore() (*Result, error) {
	f.logger.Info("Initialized memory session store",
		applog.FieldBackend, Memory.String())

	return &Result{Store: memory.New(), Cleanup: nil}, nil
}
