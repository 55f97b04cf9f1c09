package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a.Start()
		a.Log.Info("Starting server", "port", a.Cfg.Port)
		return a.Run(ctx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Annotations: map[string]string{"migrate": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		getApp(cmd).Log.Info("Schema is up to date")
		return nil
	},
}
