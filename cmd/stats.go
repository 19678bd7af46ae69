package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskmaster/internal/app"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print user and task counts as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			stats, err := a.Stats.Snapshot(ctx)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"total_users":     stats.TotalUsers,
				"users_by_status": stats.UsersByStatus,
				"total_tasks":     stats.TotalTasks,
				"tasks_by_status": stats.TasksByStatus,
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
