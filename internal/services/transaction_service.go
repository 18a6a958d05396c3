package services

import (
	"context"
	"fmt"

	"chitieu/internal/amqp"
	"chitieu/internal/core"
	applog "chitieu/internal/log"
)

type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
}

type EventPublisher interface {
	PublishTransactionSaved(ctx context.Context, msg *amqp.TransactionSavedMessage) error
}

// TransactionService stores confirmed transactions and announces them on the
// event bus.
type TransactionService struct {
	store     TransactionStore
	publisher EventPublisher
	logger    *applog.Logger
}

// NewTransactionService accepts a nil publisher, in which case no events are
// sent.
func NewTransactionService(store TransactionStore, publisher EventPublisher, logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.Discard()
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentStorage),
	}
}

// SaveTransaction writes tx to the database first, then publishes the event.
// A failed publish is logged and does not fail the save.
func (s *TransactionService) SaveTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	saved, err := s.store.SaveTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publish(ctx, saved); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction saved message",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldTxID, saved.ID,
			applog.FieldError, err)
	}

	return saved, nil
}

func (s *TransactionService) publish(ctx context.Context, tx core.Transaction) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping event", applog.FieldTxID, tx.ID)
		return nil
	}
	return s.publisher.PublishTransactionSaved(ctx, amqp.NewTransactionSavedMessage(tx.ID, tx.UserID))
}
