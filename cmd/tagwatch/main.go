package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chis/tagwatch/internal/api"
	"github.com/chis/tagwatch/internal/config"
	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/registry"
	"github.com/chis/tagwatch/internal/storage"
	"github.com/chis/tagwatch/internal/watch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tagwatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath(), "Path to YAML config file")
	logFormat := flag.String("log-format", "json", "Log format: json or console")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logging.Init(cfg.LogLevel, *logFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	logging.Logger.Info("tagwatch starting",
		zap.String("config", *configPath),
		zap.String("privateRegistry", cfg.PrivateRegistry),
		zap.Int("watchedImages", len(cfg.Watch)),
		zap.Int("mirrors", len(cfg.Mirrors)))

	client := registry.NewClient(nil)
	aggregator := watch.NewAggregator(client, cfg)

	// Storage is optional. A failure here degrades to running without
	// poll history rather than refusing to start.
	var store storage.Storage
	if cfg.DBPath != "" {
		sqlStore, err := storage.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			logging.Logger.Warn("continuing without poll history", zap.Error(err))
		} else {
			defer sqlStore.Close()
			store = sqlStore
		}
	}

	interval, err := cfg.Interval()
	if err != nil {
		return err
	}
	var poller *watch.Poller
	if interval > 0 {
		poller = watch.NewPoller(aggregator, store, interval)
	}

	server := api.NewServer(api.Config{
		Port:       cfg.Port,
		Aggregator: aggregator,
		Store:      store,
		Poller:     poller,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	logging.Logger.Info("API server running", zap.Int("port", cfg.Port))

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdownChan:
		logging.Logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	return nil
}

func defaultConfigPath() string {
	if path := os.Getenv("TAGWATCH_CONFIG"); path != "" {
		return path
	}
	return "/data/tagwatch.yaml"
}
