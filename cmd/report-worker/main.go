package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"parkrent/internal/amqp"
	"parkrent/internal/cli"
	"parkrent/internal/sheets"
	gsheet "parkrent/internal/sheets/google"
	mem "parkrent/internal/sheets/memory"
	"parkrent/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg)

	logger.Info("Starting report-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var appender sheets.RowAppender
	switch cfg.LedgerBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender = client
		logger.Info("Google Sheets ledger backend initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID)
	default:
		appender = mem.New()
		logger.Info("Memory ledger backend initialized")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ledgerWorker := worker.NewLedgerWorker(repo, appender)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumePaymentRecorded(gctx, func(msg *amqp.PaymentRecordedMessage) error {
			return ledgerWorker.HandlePaymentRecorded(gctx, msg)
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
