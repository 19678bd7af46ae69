package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskmaster/internal/app"
)

var seedRolesCmd = &cobra.Command{
	Use:   "seed-roles",
	Short: "Create the admin and user roles if missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.SeedRoles(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(seedRolesCmd)
}
