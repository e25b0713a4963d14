package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Belphemur/ShowFinder/internal/client"
	"github.com/Belphemur/ShowFinder/internal/config"
	"github.com/Belphemur/ShowFinder/internal/metrics"
	"github.com/Belphemur/ShowFinder/internal/reporting"
	"github.com/Belphemur/ShowFinder/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the show search page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
}

// serve runs the HTTP surface until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, cfg *config.Config) error {
	logger := config.GetLogger()

	logger.Info().
		Str("proxy_connection_string", cfg.ProxyConnectionString).
		Str("tvmaze_base_url", cfg.TVMazeBaseURL).
		Str("cache_provider", cfg.Cache.Provider).
		Int("server_port", cfg.Server.Port).
		Str("server_address", cfg.Server.Address).
		Msg("Application started with configuration")

	flush, err := reporting.Init(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize error reporting, continuing without it")
	}
	defer flush()

	return withCatalog(cfg, func(catalog client.Catalog) error {
		if cfg.Metrics.Enabled {
			metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
			go func() {
				logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
				if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("Failed to serve metrics")
				}
			}()
			defer func() {
				if err := metricsServer.Shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("Failed to shutdown metrics server")
				}
			}()
		}

		httpServer := server.NewHTTPServer(cfg, server.New(catalog, cfg).Handler())
		serveErr := make(chan error, 1)
		go func() {
			logger.Info().Str("address", httpServer.Addr).Msg("Starting HTTP server")
			serveErr <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Str("address", httpServer.Addr).Msg("Failed to serve HTTP")
				return err
			}
			return nil
		case <-ctx.Done():
			logger.Info().Msg("Received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
			return err
		}

		logger.Info().Msg("Server stopped gracefully")
		return nil
	})
}
