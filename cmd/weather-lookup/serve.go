package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/scheduler"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the weather HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return serve(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().String("port", "", "port to listen on (default 8080)")
	cmd.Flags().String("store-path", "", "sqlite database path (default weather.db)")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn, error")

	return cmd
}

func openStore(cfg *config.AppConfig, logger *zap.Logger) (weather.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge), nil
	default:
		return store.NewSQLite(cfg.StorePath, logger)
	}
}

func serve(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) error {
	client, err := newOpenWeatherClient(cfg, logger)
	if err != nil {
		return err
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// Core service orchestrating geocoding, weather and the store.
	service := weather.NewService(st, client, client, logger)

	// Scheduler that periodically records history for favorite cities.
	sched := scheduler.New(cfg.RefreshInterval, service, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(service, httpapi.Options{
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	// Wait for termination signal or a failed listener
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	return nil
}
