// Command simple-social runs one publish tick: it selects one unposted
// bundle from the content directory, publishes it to every enabled platform,
// and commits it to the publish record. Exit code 0 only on a committed
// publish, so a cron wrapper can alert on anything else.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/tendant/simple-social/pkg/simplesocial/config"
)

func main() {
	envFile := flag.String("env", "", "path to .env file (defaults to ./.env when present)")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			slog.Error("Failed to load env file", "path", *envFile, "err", err)
			os.Exit(2)
		}
	} else {
		_ = godotenv.Load()
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "err", err)
		os.Exit(2)
	}

	ctx := context.Background()
	svc, err := cfg.BuildService(ctx, logger)
	if err != nil {
		logger.Error("Failed to build service", "err", err)
		os.Exit(2)
	}

	result, err := svc.PublishRandom(ctx)
	if err != nil {
		logger.Error("Publish run failed", "err", err)
		os.Exit(1)
	}
	if !result.Committed {
		logger.Warn("Nothing published", "basename", result.Basename)
		os.Exit(1)
	}

	logger.Info("Published", "basename", result.Basename, "run_id", result.RunID)
}
