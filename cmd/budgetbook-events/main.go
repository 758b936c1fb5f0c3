package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/backend"
	"budgetbook/internal/cache"
	"budgetbook/internal/cli"
	"budgetbook/internal/log"
	"budgetbook/internal/worker"
)

const (
	dialAttempts  = 5
	dedupSize     = 10000
	dedupTTL      = time.Hour
	sweepInterval = 10 * time.Minute
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker, nil)
	cfg := cli.LoadAndValidateConfig(logger.Logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to consume change events")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, dialAttempts)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	// The database is only used to enrich log lines; the consumer runs
	// without it.
	var lookup worker.Lookup
	backendConfig, err := backend.FromAppConfig(cfg)
	if err == nil {
		backendConfig.AMQPURL = ""
		var result *backend.BackendResult
		result, err = backend.NewFactory(logger.Logger).CreateBackend(ctx, backendConfig)
		if err == nil {
			defer result.Cleanup()
			lookup = result.Store
		}
	}
	if err != nil {
		logger.Warn("Database unavailable, change events are logged without names", log.FieldError, err)
	}

	seen := cache.NewLRU[time.Time](dedupSize, dedupTTL)
	sweeper := cache.NewManager(func(removed int) {
		logger.Debug("Expired change event keys", log.FieldCount, removed)
	})
	sweeper.Register(seen)
	sweeper.StartCleanup(sweepInterval)
	defer sweeper.Stop()

	audit := worker.NewAuditWorker(lookup, seen, logger)

	logger.Info("Consuming change events", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := client.ConsumeChanges(ctx, audit.HandleChange); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Change event consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Consumer stopped", "handled", audit.Stats())
}
