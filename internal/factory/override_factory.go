package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/email-trust/internal/adapters/override"
	"github.com/mikey/email-trust/internal/config"
	"go.uber.org/zap"
)

// OverrideFactory creates override stores based on configuration
type OverrideFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOverrideFactory creates a new override store factory
func NewOverrideFactory(cfg *config.Config, logger *zap.Logger) *OverrideFactory {
	return &OverrideFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateOverrideStore creates an override store based on the configuration
func (f *OverrideFactory) CreateOverrideStore() (override.Store, error) {
	overridesCfg := f.cfg.GetOverrides()

	switch overridesCfg.Store {
	case "memory":
		return override.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(overridesCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return override.NewSQLiteStore(overridesCfg.SQLitePath, f.logger)
	case "mysql":
		return override.NewMySQLStore(overridesCfg.MySQLDSN, f.logger)
	case "redis":
		return override.NewRedisStore(overridesCfg.RedisAddr, overridesCfg.RedisDB, f.logger)
	default:
		return nil, fmt.Errorf("unsupported override store type: %s", overridesCfg.Store)
	}
}
