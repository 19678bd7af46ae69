package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskmaster/internal/app"
	"github.com/adanyl0v/go-taskmaster/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "taskmaster",
	Short:         "Task management API server",
	Long:          "Taskmaster serves the task management API and its operator tooling.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// withApp builds the application for one command and closes it afterwards.
// The context is cancelled on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, config.NewEnvReader())
	if err != nil {
		return err
	}
	defer a.Close()

	err = fn(ctx, a)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Str("command", cmd.Name()).
			Msg("command failed")
	}
	return err
}
