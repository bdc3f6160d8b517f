package main

import (
	"os"
	"time"

	"savingsdash/internal/amqp"
	"savingsdash/internal/cli"
	"savingsdash/internal/log"
	"savingsdash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	logger.Info("Starting savings analytics worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AnalyticsEnabled() {
		logger.Error("AMQP_URL is required to consume selection events")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	w := worker.NewAnalyticsWorker(repo, logger)
	if err := w.Run(ctx, client); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
