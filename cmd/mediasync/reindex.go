package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"mediasync/internal/config"
	"mediasync/internal/logging"
	"mediasync/internal/manager"
	"mediasync/internal/store"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Run one full reconciliation pass against every configured source and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReindex()
	},
}

func runReindex() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	st, err := store.New(context.Background(), cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	converter := convertFromConfig(cfg)
	mgr := manager.New(st, converter, nil, cfg.ManagerConfig())

	start := time.Now()
	if err := mgr.Reconcile(context.Background()); err != nil {
		return err
	}
	logging.Info("reindex: reconciliation complete in %s", time.Since(start))
	return nil
}
