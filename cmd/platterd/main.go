package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"platter/internal/catalog"
	"platter/internal/config"
	"platter/internal/daemon"
	"platter/internal/logging"
	"platter/internal/preflight"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("ensure directories", logging.Error(err))
		return
	}
	for _, check := range preflight.RunAll(cfg) {
		if !check.Passed {
			logger.Error("preflight check failed",
				logging.String("check", check.Name),
				logging.String("detail", check.Detail),
			)
			return
		}
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Error("open catalog store", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("platterd shutting down")
}
