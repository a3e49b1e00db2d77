// Package main is the mediasync command-line entry point: a
// github.com/spf13/cobra root command with serve, reindex, and migrate
// subcommands, replacing the teacher's bare main() with the multi-command
// surface the bt-go pack example uses.
package main

import (
	"github.com/spf13/cobra"

	"mediasync/internal/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "mediasync",
	Short: "Media source synchronization engine and BooServer HTTP front-end",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "path to the YAML configuration file")
	rootCmd.AddCommand(serveCmd, reindexCmd, migrateCmd)
	if err := rootCmd.Execute(); err != nil {
		logging.Fatal("%v", err)
	}
}
