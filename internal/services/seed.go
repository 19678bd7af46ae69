package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

// SeedRoles makes sure every role in models.SeededRoles exists. Failures
// are logged and returned, the caller decides whether to go on.
func SeedRoles(ctx context.Context, store storage.Store, logger zerolog.Logger) error {
	err := store.WithinTx(ctx, storage.TxOptions{}, func(ctx context.Context, tx storage.Tx) error {
		for _, name := range models.SeededRoles {
			created, err := tx.Roles().EnsureExists(ctx, name)
			if err != nil {
				return err
			}
			if created {
				logger.Info().
					Str("role", name).
					Msg("created role")
			}
		}
		return nil
	})
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to seed roles")
		return err
	}

	logger.Debug().
		Strs("roles", models.SeededRoles).
		Msg("seeded roles")
	return nil
}
