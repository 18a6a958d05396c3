// Package memory is an in-process TransactionWriter for tests and local
// runs without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"chitieu/internal/core"
	ports "chitieu/internal/sheets"
)

type Sheet struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ ports.TransactionWriter = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

// AppendTransaction stores the row and returns a synthetic reference.
func (s *Sheet) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, tx)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sheet) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.rows...)
}
