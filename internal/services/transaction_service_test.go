package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitieu/internal/amqp"
	"chitieu/internal/core"
)

type stubStore struct {
	err   error
	saved []core.Transaction
}

func (s *stubStore) SaveTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if s.err != nil {
		return core.Transaction{}, s.err
	}
	s.saved = append(s.saved, tx)
	return tx, nil
}

type stubPublisher struct {
	err  error
	msgs []*amqp.TransactionSavedMessage
}

func (p *stubPublisher) PublishTransactionSaved(_ context.Context, msg *amqp.TransactionSavedMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func sampleTx() core.Transaction {
	return core.Transaction{
		ID: "tx-1", UserID: "demo-user", Amount: 45000, Category: core.CategoryTransport,
		Description: "grab về nhà", TransactionDate: core.NewDate(2025, 3, 14),
	}
}

func TestTransactionService_SavePublishes(t *testing.T) {
	store, pub := &stubStore{}, &stubPublisher{}
	svc := NewTransactionService(store, pub, nil)

	saved, err := svc.SaveTransaction(context.Background(), sampleTx())
	require.NoError(t, err)
	assert.Equal(t, "tx-1", saved.ID)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "tx-1", pub.msgs[0].ID)
	assert.Equal(t, "demo-user", pub.msgs[0].UserID)
}

func TestTransactionService_PublishFailureDoesNotFailSave(t *testing.T) {
	store, pub := &stubStore{}, &stubPublisher{err: amqp.ErrCircuitOpen}
	svc := NewTransactionService(store, pub, nil)

	_, err := svc.SaveTransaction(context.Background(), sampleTx())
	require.NoError(t, err)
	assert.Len(t, store.saved, 1)
}

func TestTransactionService_StoreFailure(t *testing.T) {
	boom := errors.New("disk full")
	pub := &stubPublisher{}
	svc := NewTransactionService(&stubStore{err: boom}, pub, nil)

	_, err := svc.SaveTransaction(context.Background(), sampleTx())
	require.ErrorIs(t, err, boom)
	assert.Empty(t, pub.msgs)
}

func TestTransactionService_NilPublisher(t *testing.T) {
	store := &stubStore{}
	svc := NewTransactionService(store, nil, nil)

	_, err := svc.SaveTransaction(context.Background(), sampleTx())
	require.NoError(t, err)
	assert.Len(t, store.saved, 1)
}
