package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yungbote/voterguide-backend/internal/app"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const appKey contextKey = "app"

var rootCmd = &cobra.Command{
	Use:     "voterguide",
	Short:   "Ballot data aggregator and voter guide API",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || (cmd.HasParent() && cmd.Parent().Name() == "completion") {
			return nil
		}
		migrate, _ := cmd.Flags().GetBool("migrate")
		if _, ok := cmd.Annotations["migrate"]; ok {
			migrate = true
		}
		a, err := app.New(cmd.Context(), app.Options{Migrate: migrate})
		if err != nil {
			return err
		}
		cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if a := getApp(cmd); a != nil {
			a.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("migrate", false, "Run schema migrations before the command")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, refreshCmd, fetchCmd)
}

func getApp(cmd *cobra.Command) *app.App {
	a, _ := cmd.Context().Value(appKey).(*app.App)
	return a
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
