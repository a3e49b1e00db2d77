package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"mediasync/internal/config"
	"mediasync/internal/filesystem"
	"mediasync/internal/httpapi"
	"mediasync/internal/logging"
	"mediasync/internal/manager"
	"mediasync/internal/memory"
	"mediasync/internal/metrics"
	"mediasync/internal/store"
	"mediasync/internal/thumbnail"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the synchronization engine and HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	startTime := time.Now()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	metrics.InitializeMetrics()
	metrics.SetAppInfo(config.Version, config.Commit, runtime.Version())
	filesystem.SetObserver(metrics.NewFilesystemObserver())

	dbStart := time.Now()
	st, err := store.New(context.Background(), cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()
	logging.Info("store: initialized in %s", time.Since(dbStart))

	memMonitor := memory.NewMonitor(memory.DefaultConfig())
	memMonitor.Start()
	defer memMonitor.Stop()

	var thumbs *thumbnail.Generator
	if cfg.Thumbnail.Enabled {
		thumbnail.InitVips()
		defer thumbnail.ShutdownVips()
		thumbs = thumbnail.New(cfg.Thumbnail.Dir, cfg.FFmpeg.Path)
		thumbs.SetMemoryMonitor(memMonitor)
		logging.Info("thumbnail: generator initialized at %s", cfg.Thumbnail.Dir)
	} else {
		logging.Info("thumbnail: disabled")
	}

	converter := convertFromConfig(cfg)
	converter.SetMemoryMonitor(memMonitor)
	mgr := manager.New(st, converter, thumbs, cfg.ManagerConfig())
	if err := mgr.Start(context.Background()); err != nil {
		return err
	}
	logging.Info("manager: started, watching %d source(s)", len(cfg.Sources))

	collector := metrics.NewCollector(mgr, 1*time.Minute)
	collector.Start()

	api := httpapi.New(mgr, thumbs)
	handler := api.Router()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if cfg.Server.MetricsPort != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + cfg.Server.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("metrics server error: %v", err)
			}
		}()
		logging.Info("metrics: serving http://0.0.0.0:%s/metrics", cfg.Server.MetricsPort)
	}

	go handleShutdown(srv, metricsSrv, mgr, collector)

	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED in %s, listening on :%s", time.Since(startTime), cfg.Server.Port)
	logging.Info("------------------------------------------------------------")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func handleShutdown(srv, metricsSrv *http.Server, mgr *manager.Manager, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("shutdown: received signal %s", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logging.Info("shutdown: stopping metrics collector")
	collector.Stop()

	logging.Info("shutdown: stopping manager")
	mgr.StopWatching()

	if metricsSrv != nil {
		logging.Info("shutdown: stopping metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("shutdown: metrics server shutdown error: %v", err)
		}
	}

	logging.Info("shutdown: stopping HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("shutdown: HTTP server shutdown error: %v", err)
	}

	logging.Info("shutdown: complete")
}
