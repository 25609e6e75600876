package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finman/internal/amqp"
	"finman/internal/cli"
	apphttp "finman/internal/http"
	"finman/internal/log"
	"finman/internal/report"
	"finman/internal/services"
	"finman/internal/store"
	"finman/internal/store/memory"
	"finman/internal/store/rest"
)

func main() {
	cli.LoadEnvFile()
	slogger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(slogger)

	logger := log.New(log.Config{Handler: slogger.Handler()})

	logger.Info("Starting finman server", "port", cfg.Port, "backend", cfg.DataBackend)

	// Choose the transaction backend. The memory store exists for local
	// development and tests, the REST gateway is the real thing.
	var gateway store.Gateway
	switch cfg.DataBackend {
	case "memory":
		gateway = memory.New()
		logger.Info("Initialized memory backend")
	default:
		client, err := rest.New(cfg.BackendBaseURL, cfg.BackendTimeout, logger)
		if err != nil {
			logger.Error("Failed to initialize REST gateway", "error", err, "base_url", cfg.BackendBaseURL)
			os.Exit(1)
		}
		gateway = client
		logger.Info("Initialized REST backend", "base_url", cfg.BackendBaseURL)
	}

	archiveRepo := cli.InitArchive(slogger, cfg.SQLiteDBPath)
	defer archiveRepo.Close()

	// AMQP is optional. Without it, queued reports are picked up by the
	// worker's pending sweep instead of being pushed.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - reports rely on the worker sweep")
	}

	reportSvc := services.NewReportService(
		archiveRepo,
		amqpClient,
		report.NewGenerator(cfg.FontDir),
		cfg.ReportsDir,
	)

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Gateway:        gateway,
		Reports:        reportSvc,
		Archive:        archiveRepo,
		Logger:         logger,
		BackendTimeout: cfg.BackendTimeout,
		ListCacheSize:  cfg.ListCacheSize,
		ListCacheTTL:   cfg.ListCacheTTL,
	})
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(slogger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
