package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"fincircle/internal/amqp"
	"fincircle/internal/cache"
	"fincircle/internal/cli"
	"fincircle/internal/config"
	apphttp "fincircle/internal/http"
	"fincircle/internal/log"
	"fincircle/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig((*config.Config).Validate)
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	res := cli.InitBackend(context.Background(), logger, cfg)

	cacheManager := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	if res.Cache != nil {
		cacheManager.Register(res.Cache)
		cacheManager.StartCleanup(cfg.CacheTTL)
	}

	// Asynchronous exports are optional; the API answers 503 without a broker.
	var (
		amqpClient *amqp.Client
		publisher  apphttp.ExportPublisher
	)
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, asynchronous exports disabled", log.FieldError, err)
		} else {
			amqpClient = c
			publisher = c
			logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ready := func(ctx context.Context) error {
		if res.Ping != nil {
			if err := res.Ping(ctx); err != nil {
				return fmt.Errorf("backend: %w", err)
			}
		}
		if amqpClient != nil {
			if err := amqpClient.Ping(); err != nil {
				return fmt.Errorf("amqp: %w", err)
			}
		}
		return nil
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Reports:            services.NewReportService(res.Source, res.Backend),
		Publisher:          publisher,
		Ready:              ready,
		Invalidate:         res.Invalidate,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger.WithComponent(log.ComponentHTTP),
	})

	_, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", log.FieldError, err)
			}
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Backend cleanup error", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting fincircle server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"async_exports", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped gracefully")
}
