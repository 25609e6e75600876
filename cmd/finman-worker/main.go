package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finman/internal/amqp"
	"finman/internal/cli"
	"finman/internal/log"
	"finman/internal/report"
	"finman/internal/services"
	"finman/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	slogger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(slogger)

	logger := log.New(log.Config{Handler: slogger.Handler(), Component: log.ComponentWorker})

	logger.Info("Starting finman-worker")

	archiveRepo := cli.InitArchive(slogger, cfg.SQLiteDBPath)
	defer archiveRepo.Close()

	// Without AMQP the worker still makes progress through the periodic
	// pending sweep.
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
		logger.Info("AMQP disabled - running on sweep only")
	}

	reportSvc := services.NewReportService(
		archiveRepo,
		amqpClient,
		report.NewGenerator(cfg.FontDir),
		cfg.ReportsDir,
	)

	w := worker.NewReportWorker(reportSvc, archiveRepo, amqpClient, cfg.ReportBatchSize, cfg.SweepInterval)

	ctx, done := cli.GracefulShutdown(slogger, 30*time.Second, nil)

	logger.Info("Report worker running",
		"batch_size", cfg.ReportBatchSize,
		"sweep_interval", cfg.SweepInterval.String())
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
