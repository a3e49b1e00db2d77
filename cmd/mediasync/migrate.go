package main

import (
	"context"

	"github.com/spf13/cobra"

	"mediasync/internal/config"
	"mediasync/internal/logging"
	"mediasync/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations to the store and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate()
	},
}

func runMigrate() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// store.New runs every pending golang-migrate migration before
	// returning, so opening and closing the store is the whole operation.
	st, err := store.New(context.Background(), cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	logging.Info("migrate: schema is up to date")
	return nil
}
