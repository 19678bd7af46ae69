package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/config"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type Store struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

// Connect opens a pool against cfg.URL and pings it.
func Connect(ctx context.Context, logger zerolog.Logger, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pgPool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()

	err = pgPool.Ping(pingCtx)
	if err != nil {
		pgPool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Uint16("port", poolCfg.ConnConfig.Port).
		Msg("connected to postgres")

	return New(logger, pgPool), nil
}

func New(logger zerolog.Logger, pgPool *pgxpool.Pool) *Store {
	return &Store{
		logger: logger,
		pgPool: pgPool,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS roles (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS users (
    id              BIGSERIAL PRIMARY KEY,
    email           TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    full_name       TEXT,
    role_id         BIGINT NOT NULL REFERENCES roles (id),
    status          TEXT NOT NULL DEFAULT 'PENDING'
);

CREATE TABLE IF NOT EXISTS tasks (
    id          BIGSERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT,
    status      TEXT NOT NULL DEFAULT 'TODO',
    category    TEXT NOT NULL DEFAULT 'OTHER',
    due_date    TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    owner_id    BIGINT NOT NULL REFERENCES users (id)
);

CREATE INDEX IF NOT EXISTS tasks_owner_id_idx ON tasks (owner_id);
`

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pgPool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	s.logger.Debug().Msg("ensured postgres schema")
	return nil
}

func (s *Store) WithinTx(
	ctx context.Context,
	opts storage.TxOptions,
	fn func(ctx context.Context, tx storage.Tx) error,
) error {
	tx, err := s.pgPool.BeginTx(ctx, txOptions(opts))
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = fn(ctx, &pgTx{tx: tx})
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}
	return nil
}

func (s *Store) Close() error {
	s.pgPool.Close()
	s.logger.Info().Msg("disconnected from postgres")
	return nil
}

func txOptions(opts storage.TxOptions) pgx.TxOptions {
	var txOpts pgx.TxOptions
	if opts.ReadOnly {
		txOpts.AccessMode = pgx.ReadOnly
	}
	if opts.Snapshot {
		txOpts.IsoLevel = pgx.RepeatableRead
	}
	return txOpts
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) Roles() storage.RoleRepository {
	return roleRepository{tx: t.tx}
}

func (t *pgTx) Users() storage.UserRepository {
	return userRepository{tx: t.tx}
}

func (t *pgTx) Tasks() storage.TaskRepository {
	return taskRepository{tx: t.tx}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
