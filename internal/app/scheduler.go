package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskmaster/internal/services"
)

const statsReportTimeout = 30 * time.Second

// StatsReporter logs a stats snapshot on a cron schedule.
type StatsReporter struct {
	logger zerolog.Logger
	cron   *cron.Cron
	stats  services.StatsService
}

func NewStatsReporter(logger zerolog.Logger, stats services.StatsService) *StatsReporter {
	return &StatsReporter{
		logger: logger,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		stats:  stats,
	}
}

// Schedule registers the report with a standard five-field cron spec or a
// descriptor such as "@hourly".
func (r *StatsReporter) Schedule(spec string) error {
	_, err := r.cron.AddFunc(spec, r.Report)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("schedule", spec).
			Msg("failed to schedule stats report")
		return err
	}
	r.logger.Info().
		Str("schedule", spec).
		Msg("scheduled stats report")
	return nil
}

func (r *StatsReporter) Report() {
	ctx, cancel := context.WithTimeout(context.Background(), statsReportTimeout)
	defer cancel()

	stats, err := r.stats.Snapshot(ctx)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to compute stats report")
		return
	}

	users := zerolog.Dict()
	for status, count := range stats.UsersByStatus {
		users.Int64(string(status), count)
	}
	tasks := zerolog.Dict()
	for status, count := range stats.TasksByStatus {
		tasks.Int64(string(status), count)
	}
	r.logger.Info().
		Int64("total_users", stats.TotalUsers).
		Dict("users_by_status", users).
		Int64("total_tasks", stats.TotalTasks).
		Dict("tasks_by_status", tasks).
		Msg("stats report")
}

func (r *StatsReporter) Start() {
	r.cron.Start()
}

// Stop waits for a running report to finish.
func (r *StatsReporter) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}
