package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"parkrent/internal/amqp"
	"parkrent/internal/cli"
	apphttp "parkrent/internal/http"
	"parkrent/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	logger.Info("Starting parkrent server")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// AMQP is optional; without it payments are still recorded, only the
	// external ledger mirroring stops.
	var publisher services.EventPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("AMQP unavailable, ledger mirroring disabled", "error", err)
	} else {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	contractService := services.NewContractService(repo, publisher)
	paymentService := services.NewPaymentService(repo, publisher)

	srv := apphttp.NewServer(contractService, paymentService)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Open-ended contracts accrue liability as months pass; refresh them on
	// a timer so the amounts stay correct between writes.
	go func() {
		ticker := time.NewTicker(cfg.RecalcInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := contractService.RecalculateAll(ctx); err != nil {
					logger.Error("Periodic recalculation failed", "error", err)
				} else {
					srv.InvalidateReports()
					logger.Info("Periodic recalculation complete", "contracts", n)
				}
			}
		}
	}()

	if err := srv.Start(ctx, ":"+cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	slog.Info("Server stopped gracefully")
}
