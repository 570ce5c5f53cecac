package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/portal-planner/internal/observability"
	"github.com/jonathan/portal-planner/internal/server"
)

var (
	serveConfigPath string
	servePort       int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server that exposes the login endpoint, the streamed login endpoint, health and metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to a JSON or YAML config file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, logger, err := loadRuntime(serveConfigPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if servePort != 0 {
		cfg.Port = servePort
	}

	logger.Info("configuration loaded",
		zap.String("base_url", cfg.BaseURL),
		zap.Int("port", cfg.Port),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Bool("use_browser", cfg.UseBrowser),
		zap.Strings("client_urls", cfg.ClientURLs),
	)

	srv := server.New(server.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
	})
	return srv.Start()
}
