package warehouse

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/plant/backend/internal/domain/shared"
)

const (
	// DefaultStartLocation is where the address cursor starts when the
	// caller does not name a location.
	DefaultStartLocation = "A-01-01"
	// DefaultBinCapacity is the per-bin limit applied when the caller does
	// not specify one.
	DefaultBinCapacity = 100
)

// Lot describes an incoming quantity of one product to be placed into bins.
type Lot struct {
	ProductName   string
	ProductCode   string
	Quantity      int
	StartLocation string
	InDate        time.Time
	Note          string
	Category      string
	ProductType   string
	CapacityLimit int
}

// Allocator places lots into storage bins. It merges into the existing
// partially-filled READY bin at each location before opening a new bin, and
// advances the bin-address cursor whenever a location saturates for the
// lot's product code.
//
// Allocate issues a sequence of reads and writes against the repository;
// callers that need atomicity across the whole lot must run it inside a
// transaction-scoped repository.
type Allocator struct {
	bins BinRepository
}

// NewAllocator creates an Allocator over the given capacity store.
func NewAllocator(bins BinRepository) *Allocator {
	return &Allocator{bins: bins}
}

// Allocate splits the lot across bins and returns the ids of every bin that
// received stock, in placement order. A non-positive quantity is a no-op and
// returns an empty slice. A capacity limit below 1 is clamped to 1.
//
// Each iteration either places a positive quantity or advances the cursor
// past a full location, so the loop terminates for every finite lot. Running
// off the end of the address space surfaces ErrAddressSpaceExhausted.
func (a *Allocator) Allocate(ctx context.Context, lot Lot) ([]uuid.UUID, error) {
	remaining := lot.Quantity
	if remaining <= 0 {
		return []uuid.UUID{}, nil
	}

	limit := lot.CapacityLimit
	if limit < 1 {
		limit = 1
	}
	start := lot.StartLocation
	if start == "" {
		start = DefaultStartLocation
	}
	loc, err := ParseBinAddress(start)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, (remaining+limit-1)/limit)
	lotIndex := 1

	for remaining > 0 {
		if err := a.bins.LockLocation(ctx, loc.String(), lot.ProductCode); err != nil {
			return nil, err
		}
		used, err := a.bins.OccupiedQuantity(ctx, loc.String(), lot.ProductCode)
		if err != nil {
			return nil, err
		}
		room := limit - used
		if room <= 0 {
			// Location is full for this product; try the next one.
			if loc, err = loc.Next(); err != nil {
				return nil, err
			}
			continue
		}

		take := remaining
		if take > room {
			take = room
		}

		target, err := a.bins.FindMergeable(ctx, loc.String(), lot.ProductCode)
		switch {
		case err == nil:
			if err := a.bins.AddQuantity(ctx, target.ID, take); err != nil {
				return nil, err
			}
			ids = append(ids, target.ID)
		case errors.Is(err, shared.ErrNotFound):
			bin, berr := NewInventoryBin(
				lot.ProductName, lot.ProductCode, take, loc, lot.InDate,
				AnnotateSplitNote(lot.Note, lotIndex),
				lot.Category, lot.ProductType, limit,
			)
			if berr != nil {
				return nil, berr
			}
			if err := a.bins.Create(ctx, bin); err != nil {
				return nil, err
			}
			ids = append(ids, bin.ID)
		default:
			return nil, err
		}

		remaining -= take
		if remaining > 0 && take == room {
			// Exactly filled the location; move on.
			if loc, err = loc.Next(); err != nil {
				return nil, err
			}
		}
		lotIndex++
	}

	return ids, nil
}
