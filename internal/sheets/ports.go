package sheets

import (
	"context"

	"chitieu/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionWriter mirrors a stored transaction as one spreadsheet row.
	TransactionWriter interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)
