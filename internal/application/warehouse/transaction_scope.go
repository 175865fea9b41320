package warehouse

import (
	"context"

	"github.com/plant/backend/internal/domain/warehouse"
)

// TransactionScope runs a function against a BinRepository bound to a single
// database transaction. Every read inside the function sees the writes
// already issued by the same call, and the whole multi-bin lot placement
// commits or rolls back as one unit.
type TransactionScope interface {
	// Execute runs fn inside a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(bins warehouse.BinRepository) error) error
}

// NoOpTransactionScope runs the function against a plain repository without
// a real transaction. Useful for tests and in-memory stores.
type NoOpTransactionScope struct {
	bins warehouse.BinRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the repository.
func NewNoOpTransactionScope(bins warehouse.BinRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{bins: bins}
}

// Execute runs fn directly against the wrapped repository.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(bins warehouse.BinRepository) error) error {
	return fn(s.bins)
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
