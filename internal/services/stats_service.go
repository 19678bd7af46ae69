package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/models"
	"github.com/adanyl0v/go-taskmaster/internal/policy"
	"github.com/adanyl0v/go-taskmaster/internal/storage"
)

type statsServiceImpl struct {
	logger zerolog.Logger
	store  storage.Store
}

func NewStatsService(
	logger zerolog.Logger,
	store storage.Store,
) StatsService {
	return &statsServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *statsServiceImpl) AdminStats(ctx context.Context, actor *models.User) (*models.AdminStats, error) {
	err := policy.RequireActiveAdmin(actor)
	if err != nil {
		return nil, forbidden(err)
	}
	return s.Snapshot(ctx)
}

// Snapshot reads all four figures in one read-only snapshot transaction so
// they describe the same point in time.
func (s *statsServiceImpl) Snapshot(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	opts := storage.TxOptions{ReadOnly: true, Snapshot: true}
	err := s.store.WithinTx(ctx, opts, func(ctx context.Context, tx storage.Tx) error {
		var err error
		stats.TotalUsers, stats.UsersByStatus, err = tx.Users().CountByStatus(ctx)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to count users by status")
			return err
		}

		stats.TotalTasks, stats.TasksByStatus, err = tx.Tasks().CountByStatus(ctx)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to count tasks by status")
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.logger.Debug().
		Int64("total_users", stats.TotalUsers).
		Int64("total_tasks", stats.TotalTasks).
		Msg("computed stats")
	return &stats, nil
}
