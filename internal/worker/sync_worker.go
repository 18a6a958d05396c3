// Package worker mirrors saved transactions into the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"chitieu/internal/amqp"
	"chitieu/internal/core"
	applog "chitieu/internal/log"
	"chitieu/internal/sheets"
	"chitieu/internal/storage"
)

type TransactionGetter interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
}

// SyncWorker appends each announced transaction to the sheet.
type SyncWorker struct {
	store  TransactionGetter
	sheet  sheets.TransactionWriter
	logger *applog.Logger
}

func NewSyncWorker(store TransactionGetter, sheet sheets.TransactionWriter, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		store:  store,
		sheet:  sheet,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleTransactionSaved loads the transaction named by msg and appends it to
// the sheet. A missing row is dropped rather than retried; any other error is
// returned so the message is requeued.
func (w *SyncWorker) HandleTransactionSaved(ctx context.Context, msg *amqp.TransactionSavedMessage) error {
	tx, err := w.store.GetTransaction(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		w.logger.WarnContext(ctx, "Transaction not found, dropping message",
			applog.FieldTxID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.sheet.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	w.logger.InfoContext(ctx, "Transaction synced",
		applog.FieldOperation, applog.OpSync,
		applog.FieldTxID, tx.ID,
		applog.FieldUserID, tx.UserID,
		"row_ref", ref)
	return nil
}
