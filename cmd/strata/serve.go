package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/strata/internal/cli"
	"github.com/aretw0/strata/internal/presentation/tui"
	httpAdapter "github.com/aretw0/strata/pkg/adapters/http"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP document server",
	Long: `Starts an HTTP server that accepts KRA uploads, caches them in memory or Redis
and serves their layer trees as JSON and their layers as PNG.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("cache") {
			cfg.Cache.Backend, _ = cmd.Flags().GetString("cache")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		if !quiet {
			tui.PrintBanner(cmd.ErrOrStderr())
		}
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("cache", "memory", "Document cache backend: memory or redis")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	cache, closeCache, err := cli.NewCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer closeCache()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := httpAdapter.NewHandler(&httpAdapter.Server{
		Cache:            cache,
		Options:          cli.LoadOptions(cfg.Loader, logger),
		Metrics:          observability.NewMetrics(reg),
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:           logger,
		MaxUploadBytes:   cfg.Server.MaxUploadBytes,
		MaxExpandedBytes: cfg.Server.MaxExpandedBytes,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "cache", cfg.Cache.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	sc := cli.NewSignalContext(parent)
	defer sc.Cancel()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-sc.Done():
		logger.Info("shutting down", "signal", fmt.Sprint(sc.Signal()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("failed to close server: %w", err)
			}
		}
		logger.Info("server stopped")
		return nil
	}
}
