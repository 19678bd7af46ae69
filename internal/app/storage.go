package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/config"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
	"github.com/adanyl0v/go-taskmaster/internal/storage/postgres"
	"github.com/adanyl0v/go-taskmaster/internal/storage/sqlite"
)

// OpenStore connects to the configured database and makes sure its schema
// exists.
func OpenStore(ctx context.Context, logger zerolog.Logger, cfg config.DatabaseConfig) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, logger, cfg)
		if err != nil {
			return nil, err
		}
		err = store.EnsureSchema(ctx)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(logger, cfg.URL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
}
