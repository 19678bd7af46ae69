package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-taskmaster/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Seed the roles, then serve the HTTP API until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		return a.Serve(ctx)
	})
}
