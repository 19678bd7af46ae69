package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/config"
	"github.com/adanyl0v/go-taskmaster/internal/credentials"
	"github.com/adanyl0v/go-taskmaster/internal/services"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

// App holds the dependencies shared by every command.
type App struct {
	Logger zerolog.Logger
	Config *config.Config
	Store  storage.Store

	Users services.UserService
	Tasks services.TaskService
	Stats services.StatsService
}

// New reads the config, configures logging and opens the store.
func New(ctx context.Context, reader config.Reader) (*App, error) {
	logger := NewDefaultLogger()
	logger.Info().Msg("initialized default logger")

	cfg, err := ReadConfig(logger, reader)
	if err != nil {
		return nil, err
	}

	logger, err = NewApplicationLogger(logger, cfg.Env)
	if err != nil {
		return nil, err
	}

	hasher, err := credentials.NewHasher(cfg.Password.Hasher,
		credentials.WithBcryptCost(cfg.Password.BcryptCost))
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}
	issuer, err := credentials.NewIssuer(cfg.JWT.SecretKey, cfg.JWT.Algorithm, cfg.JWT.AccessTokenTTL(),
		credentials.WithIssuerName(cfg.JWT.Issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	store, err := OpenStore(ctx, logger, cfg.Database)
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", cfg.Database.Driver).
			Msg("failed to open store")
		return nil, err
	}

	return &App{
		Logger: logger,
		Config: cfg,
		Store:  store,
		Users:  services.NewUserService(logger, store, hasher, issuer),
		Tasks:  services.NewTaskService(logger, store, nil),
		Stats:  services.NewStatsService(logger, store),
	}, nil
}

func (a *App) Close() {
	err := a.Store.Close()
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to close store")
	}
}
