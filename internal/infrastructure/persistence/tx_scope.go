package persistence

import (
	"context"

	appwarehouse "github.com/plant/backend/internal/application/warehouse"
	"github.com/plant/backend/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormTransactionScope runs warehouse operations inside a single GORM
// transaction. The repository handed to the callback locks the rows it reads
// (FOR UPDATE) and takes a keyed advisory lock per allocated location, which
// serializes concurrent allocators on the same (location, productCode) and
// concurrent deliveries on the same bin.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a transaction scope over the database.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a transaction, rolling back on error. Conflict
// aborts detected at commit surface as shared.ErrConcurrencyConflict.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(bins warehouse.BinRepository) error) error {
	return translateError(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newLockedGormBinRepository(tx))
	}))
}

var _ appwarehouse.TransactionScope = (*GormTransactionScope)(nil)
