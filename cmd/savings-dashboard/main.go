package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"savingsdash/internal/amqp"
	"savingsdash/internal/cache"
	"savingsdash/internal/cli"
	apphttp "savingsdash/internal/http"
	"savingsdash/internal/log"
	"savingsdash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	store, data := cli.OpenDataset(logger, cfg)

	var publisher *services.SelectionPublisher
	if cfg.AnalyticsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(log.ComponentAMQP))
		if err != nil {
			// analytics are optional, the dashboard runs without them
			logger.Warn("Failed to connect to AMQP, selection analytics disabled", log.FieldError, err)
		} else {
			publisher = services.NewSelectionPublisher(client, logger)
			logger.Info("Selection analytics enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Config{
		Store:          store,
		Currency:       cfg.CurrencySymbol,
		Breakpoint:     cfg.MobileBreakpoint,
		SessionTTL:     cfg.SessionTTL,
		MaxSessions:    cfg.MaxSessions,
		Publisher:      publisher,
		Ready:          data.Ready,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         logger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	caches := cache.NewManager(logger)
	caches.Register(srv.SessionCache())

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
		if err := data.Close(); err != nil {
			logger.Warn("Failed to close data backend", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting savings dashboard",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			log.FieldEntities, store.Len(),
			"degraded", store.Degraded())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return caches.Run(gctx, time.Minute)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
