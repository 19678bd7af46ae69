// Package sqlite implements storage with gorm on SQLite. It backs local
// development and the test-suite.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type Store struct {
	logger zerolog.Logger
	db     *gorm.DB
}

// Open opens the database at dsn and migrates the schema.
func Open(logger zerolog.Logger, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = "taskmaster.db"
	}

	inMemory := isInMemory(dsn)
	if !inMemory {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	dbLogger := logger.With().Str("component", "gorm").Logger()
	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: driverName,
		DSN:        dsn,
	}), &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(&dbLogger, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if inMemory {
		// Every connection to an in-memory database sees its own empty
		// database, so the pool must hold exactly one.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&roleRow{}, &userRow{}, &taskRow{}); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Info().
		Str("dsn", dsn).
		Msg("opened sqlite database")

	return &Store{
		logger: logger,
		db:     db,
	}, nil
}

func (s *Store) WithinTx(
	ctx context.Context,
	_ storage.TxOptions,
	fn func(ctx context.Context, tx storage.Tx) error,
) error {
	// SQLite transactions are serializable, so every option is already met.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormTx{db: tx})
	})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	if err != nil {
		return err
	}
	s.logger.Info().Msg("closed sqlite database")
	return nil
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) Roles() storage.RoleRepository {
	return roleRepository{db: t.db}
}

func (t *gormTx) Users() storage.UserRepository {
	return userRepository{db: t.db}
}

func (t *gormTx) Tasks() storage.TaskRepository {
	return taskRepository{db: t.db}
}

func isInMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// ensureDir creates the parent directory of a file DSN.
func ensureDir(dsn string) error {
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
