package storage

import (
	"fmt"

	"github.com/matthieukhl/storefront/internal/config"
	"github.com/matthieukhl/storefront/internal/database"
)

// Open creates the key-value store selected by configuration
func Open(cfg *config.Config) (KV, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return Scoped(NewMemoryKV(), cfg.Storage.Namespace), nil
	case "file":
		kv, err := NewFileKV(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		return Scoped(kv, cfg.Storage.Namespace), nil
	case "mysql":
		db, err := database.NewConnection(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return NewSQLKV(db, cfg.Storage.Namespace), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
