package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"caja/internal/aggregate"
	"caja/internal/amqp"
	"caja/internal/backend"
	"caja/internal/cache"
	"caja/internal/config"
	"caja/internal/forms"
	apphttp "caja/internal/http"
	"caja/internal/log"
	"caja/internal/report"
	"caja/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	registry, err := storage.NewRegistry(cfg.RegistryDBPath)
	if err != nil {
		logger.Error("Failed to initialize report registry", log.FieldError, err.Error(), "path", cfg.RegistryDBPath)
		os.Exit(1)
	}
	defer registry.Close()

	// AMQP is optional; without it receipts are simply not generated
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		logger.Info("AMQP client initialized", log.FieldExchange, cfg.AMQPExchange, log.FieldQueue, cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - receipt generation unavailable")
	}

	client := backend.NewClient(cfg.BackendBaseURL, &http.Client{Timeout: 15 * time.Second}, logger)
	renderer := report.NewRenderer(cfg.ReportsDir, cfg.IVAPercent, logger)

	summaryCache := cache.NewLRUCache[aggregate.Result](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(summaryCache)
	cacheManager.StartCleanup(10 * time.Minute)
	defer cacheManager.Stop()

	// A nil interface must stay nil; only wrap when the client exists
	var receipts forms.ReceiptPublisher
	if amqpClient != nil {
		receipts = amqpClient
	}

	srv := apphttp.NewServer(":"+cfg.Port, client, renderer, registry, receipts, cfg.DefaultAccount, summaryCache, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting caja server", "port", cfg.Port, "backend_url", cfg.BackendBaseURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
