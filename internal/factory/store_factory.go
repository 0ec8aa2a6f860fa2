package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-priority-scorer/internal/adapters/store"
	"github.com/mikey/llm-priority-scorer/internal/config"
	"github.com/mikey/llm-priority-scorer/internal/ports"
	"go.uber.org/zap"
)

// StoreFactory creates priority stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePriorityStore creates a priority store based on the configuration
func (f *StoreFactory) CreatePriorityStore() (ports.PriorityStore, error) {
	storeCfg := f.cfg.GetStore()

	switch storeCfg.Type {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger)
	case "mysql":
		return store.NewMySQLStore(storeCfg.MySQLDSN, f.logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}

// IsArchiveEnabled returns whether scored emails should be archived
func (f *StoreFactory) IsArchiveEnabled() bool {
	return f.cfg.GetBool("store.archive_enabled")
}
