package main

import (
	"context"
	"errors"
	"os"

	"fincircle/internal/amqp"
	"fincircle/internal/cli"
	"fincircle/internal/config"
	"fincircle/internal/log"
	"fincircle/internal/services"
	"fincircle/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)

	logger.Info("Starting fincircle-worker", "export_dir", cfg.ExportDir)

	res := cli.InitBackend(context.Background(), logger, cfg)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	cleanup := func() {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close error", log.FieldError, err)
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", log.FieldError, err)
			}
		}
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(context.Context) { cleanup() })

	exports := worker.NewExportWorker(services.NewReportService(res.Source, res.Backend), cfg.ExportDir)
	if err := amqpClient.ConsumeExportRequests(ctx, exports.HandleExportRequest); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Export consumption failed", log.FieldError, err)
		cleanup()
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
