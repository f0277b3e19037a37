package main

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"assetfeed/internal/app"
	"assetfeed/internal/config"
	"assetfeed/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "assetfeed",
	Short: "Market data fetcher and cache for crypto and equities",
	Long: `assetfeed pulls price history and fundamentals for a watchlist of
crypto assets and equities, caches them on disk or in Redis, and serves
the latest snapshot over HTTP, websocket and NATS.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json or config.yaml")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")
}

// setup loads .env, the config file and the environment, then builds the
// logger and the service graph. With dataOnStdout, logs that would go to
// stdout are sent to stderr instead.
func setup(ctx context.Context, dataOnStdout bool) (*app.App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if dataOnStdout && (cfg.Log.Output == "" || cfg.Log.Output == "stdout") {
		cfg.Log.Output = "stderr"
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"tickers": len(cfg.Refresh.Tickers),
		"cache":   cfg.Cache.Backend,
		"entries": a.Store.Len(),
	}).Debug("service initialized")
	return a, nil
}
