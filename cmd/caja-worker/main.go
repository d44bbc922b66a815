package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"caja/internal/amqp"
	"caja/internal/backend"
	"caja/internal/config"
	"caja/internal/log"
	"caja/internal/report"
	"caja/internal/storage"
	"caja/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("Starting caja-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the receipt worker")
		os.Exit(1)
	}

	registry, err := storage.NewRegistry(cfg.RegistryDBPath)
	if err != nil {
		logger.Error("Failed to initialize report registry", log.FieldError, err.Error(), "path", cfg.RegistryDBPath)
		os.Exit(1)
	}
	defer registry.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	client := backend.NewClient(cfg.BackendBaseURL, &http.Client{Timeout: 15 * time.Second}, logger)
	renderer := report.NewRenderer(cfg.ReportsDir, cfg.IVAPercent, logger)

	receiptWorker := worker.NewReceiptWorker(client, renderer, registry, cfg.WorkerToken, cfg.WorkerTenant)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeReceiptRequests(gctx, func(msg *amqp.ReceiptRequest) error {
			return receiptWorker.HandleReceiptRequest(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
