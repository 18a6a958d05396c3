package main

import (
	"context"
	"errors"
	"os"
	"time"

	"chitieu/internal/amqp"
	"chitieu/internal/cli"
	"chitieu/internal/config"
	applog "chitieu/internal/log"
	gsheet "chitieu/internal/sheets/google"
	"chitieu/internal/worker"
)

func main() {
	cfg, logger := cli.LoadAndValidateConfig(config.RoleWorker)
	logger.Info("Starting chitieu-worker", applog.FieldOperation, applog.OpStartup)

	repo := cli.OpenRepository(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sheet, err := gsheet.New(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, sheet, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeTransactionSaved(ctx, syncWorker.HandleTransactionSaved)
	}()

	select {
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
			os.Exit(1)
		}
	case <-done:
		<-consumeErr
	}
	logger.Info("Worker stopped", applog.FieldOperation, applog.OpShutdown)
}
