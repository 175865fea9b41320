package warehouse

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter captures the bin list query semantics: free-text search over
// product name, code and location, equality on product type, category and
// status, and an inclusive inDate range.
type ListFilter struct {
	Search      string
	ProductType string
	Category    string
	Status      string
	From        *time.Time
	To          *time.Time
}

// BinRepository is the capacity store: the persistence contract the
// allocation and delivery flows depend on. Implementations participating in
// a transaction must make every read reflect the writes already issued by
// the same call, and must hold row locks on the READY rows returned by
// FindMergeable and summed by OccupiedQuantity until the transaction ends.
type BinRepository interface {
	// FindByID returns the bin or shared.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryBin, error)

	// LockLocation takes an exclusive allocation lock on (location,
	// productCode) for the remainder of the enclosing transaction. Row locks
	// cannot cover the fresh-location case where no READY row exists yet, so
	// the allocator takes this lock before every merge-or-insert decision.
	// Implementations outside a transaction may treat this as a no-op.
	LockLocation(ctx context.Context, location, productCode string) error

	// OccupiedQuantity returns the summed quantity already committed to
	// READY bins at (location, productCode). Zero when none exist.
	OccupiedQuantity(ctx context.Context, location, productCode string) (int, error)

	// FindMergeable returns the READY bin at (location, productCode) that new
	// stock merges into, or shared.ErrNotFound when the location is empty for
	// that product.
	FindMergeable(ctx context.Context, location, productCode string) (*InventoryBin, error)

	// Create inserts a new bin row.
	Create(ctx context.Context, bin *InventoryBin) error

	// AddQuantity increases a bin's quantity by delta.
	AddQuantity(ctx context.Context, id uuid.UUID, delta int) error

	// UpdateLimit sets a bin's capacity limit. shared.ErrNotFound when missing.
	UpdateLimit(ctx context.Context, id uuid.UUID, limit int) error

	// UpdateDelivery persists the post-delivery triple atomically.
	UpdateDelivery(ctx context.Context, id uuid.UUID, quantity int, status BinStatus, outDate *time.Time) error

	// Delete removes a bin row. shared.ErrNotFound when missing.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of bins matching the filter, newest inDate first.
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]InventoryBin, error)

	// Count returns the total number of bins matching the filter.
	Count(ctx context.Context, filter ListFilter) (int64, error)
}
