package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/plant/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBinRepository is an in-memory capacity store for allocator tests.
type fakeBinRepository struct {
	bins   []*InventoryBin
	locked []string
}

func (f *fakeBinRepository) LockLocation(_ context.Context, location, productCode string) error {
	f.locked = append(f.locked, location+"|"+productCode)
	return nil
}

func (f *fakeBinRepository) FindByID(_ context.Context, id uuid.UUID) (*InventoryBin, error) {
	for _, b := range f.bins {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeBinRepository) OccupiedQuantity(_ context.Context, location, productCode string) (int, error) {
	sum := 0
	for _, b := range f.bins {
		if b.Location == location && b.ProductCode == productCode && b.Status == StatusReady {
			sum += b.Quantity
		}
	}
	return sum, nil
}

func (f *fakeBinRepository) FindMergeable(_ context.Context, location, productCode string) (*InventoryBin, error) {
	for _, b := range f.bins {
		if b.Location == location && b.ProductCode == productCode && b.Status == StatusReady {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeBinRepository) Create(_ context.Context, bin *InventoryBin) error {
	f.bins = append(f.bins, bin)
	return nil
}

func (f *fakeBinRepository) AddQuantity(_ context.Context, id uuid.UUID, delta int) error {
	for _, b := range f.bins {
		if b.ID == id {
			b.Quantity += delta
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeBinRepository) UpdateLimit(_ context.Context, id uuid.UUID, limit int) error {
	for _, b := range f.bins {
		if b.ID == id {
			b.Limit = limit
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeBinRepository) UpdateDelivery(_ context.Context, id uuid.UUID, quantity int, status BinStatus, outDate *time.Time) error {
	for _, b := range f.bins {
		if b.ID == id {
			b.Quantity = quantity
			b.Status = status
			b.OutDate = outDate
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeBinRepository) Delete(_ context.Context, id uuid.UUID) error {
	for i, b := range f.bins {
		if b.ID == id {
			f.bins = append(f.bins[:i], f.bins[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeBinRepository) List(_ context.Context, _ ListFilter, _, _ int) ([]InventoryBin, error) {
	out := make([]InventoryBin, 0, len(f.bins))
	for _, b := range f.bins {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBinRepository) Count(_ context.Context, _ ListFilter) (int64, error) {
	return int64(len(f.bins)), nil
}

func (f *fakeBinRepository) at(location, code string) *InventoryBin {
	for _, b := range f.bins {
		if b.Location == location && b.ProductCode == code && b.Status == StatusReady {
			return b
		}
	}
	return nil
}

var _ BinRepository = (*fakeBinRepository)(nil)

func testLot(qty int) Lot {
	return Lot{
		ProductName:   "Banana Milk",
		ProductCode:   "BAN001",
		Quantity:      qty,
		StartLocation: "A-02-01",
		InDate:        time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Note:          "fresh",
		Category:      "BANANA",
		ProductType:   "BASIC",
		CapacityLimit: 100,
	}
}

func TestAllocator_Allocate_SplitsAcrossEmptyBins(t *testing.T) {
	repo := &fakeBinRepository{}
	alloc := NewAllocator(repo)

	ids, err := alloc.Allocate(context.Background(), testLot(230))

	require.NoError(t, err)
	require.Len(t, ids, 3)
	require.Len(t, repo.bins, 3)

	assert.Equal(t, 100, repo.at("A-02-01", "BAN001").Quantity)
	assert.Equal(t, 100, repo.at("A-02-02", "BAN001").Quantity)
	assert.Equal(t, 30, repo.at("A-02-03", "BAN001").Quantity)

	// Conservation: the whole lot is placed.
	total := 0
	for _, b := range repo.bins {
		total += b.Quantity
		assert.LessOrEqual(t, b.Quantity, b.Limit)
		assert.Equal(t, StatusReady, b.Status)
	}
	assert.Equal(t, 230, total)
}

func TestAllocator_Allocate_MergesBeforeInserting(t *testing.T) {
	repo := &fakeBinRepository{}
	existing, err := NewInventoryBin("Banana Milk", "BAN001", 15, mustAddr(t, "A-02-01"),
		time.Now(), "", "BANANA", "BASIC", 20)
	require.NoError(t, err)
	repo.bins = append(repo.bins, existing)

	lot := testLot(55)
	lot.CapacityLimit = 20
	ids, err := NewAllocator(repo).Allocate(context.Background(), lot)

	require.NoError(t, err)
	require.Len(t, ids, 4)
	assert.Equal(t, existing.ID, ids[0], "first write must merge into the existing bin")

	assert.Equal(t, 20, repo.at("A-02-01", "BAN001").Quantity)
	assert.Equal(t, 20, repo.at("A-02-02", "BAN001").Quantity)
	assert.Equal(t, 20, repo.at("A-02-03", "BAN001").Quantity)
	assert.Equal(t, 10, repo.at("A-02-04", "BAN001").Quantity)
}

func TestAllocator_Allocate_SkipsFullLocations(t *testing.T) {
	repo := &fakeBinRepository{}
	full, err := NewInventoryBin("Banana Milk", "BAN001", 100, mustAddr(t, "A-02-01"),
		time.Now(), "", "BANANA", "BASIC", 100)
	require.NoError(t, err)
	repo.bins = append(repo.bins, full)

	ids, err := NewAllocator(repo).Allocate(context.Background(), testLot(50))

	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, 100, repo.at("A-02-01", "BAN001").Quantity, "full bin untouched")
	assert.Equal(t, 50, repo.at("A-02-02", "BAN001").Quantity)
}

func TestAllocator_Allocate_DoneBinsDoNotBlockTheLocation(t *testing.T) {
	repo := &fakeBinRepository{}
	out := time.Now()
	done, err := NewInventoryBin("Banana Milk", "BAN001", 0, mustAddr(t, "A-02-01"),
		time.Now(), "", "BANANA", "BASIC", 100)
	require.NoError(t, err)
	done.Quantity = 0
	done.Status = StatusDone
	done.OutDate = &out
	repo.bins = append(repo.bins, done)

	ids, err := NewAllocator(repo).Allocate(context.Background(), testLot(60))

	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.NotEqual(t, done.ID, ids[0], "a DONE bin is never a merge target")
	assert.Equal(t, 60, repo.at("A-02-01", "BAN001").Quantity)
}

func TestAllocator_Allocate_LocksEveryVisitedLocation(t *testing.T) {
	// The merge-or-insert decision at a location with no READY row has
	// nothing to row-lock, so the allocator must take the keyed lock before
	// reading occupancy at each location, empty ones included.
	repo := &fakeBinRepository{}

	_, err := NewAllocator(repo).Allocate(context.Background(), testLot(230))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"A-02-01|BAN001",
		"A-02-02|BAN001",
		"A-02-03|BAN001",
	}, repo.locked)
}

func TestAllocator_Allocate_LocksSkippedFullLocationsToo(t *testing.T) {
	repo := &fakeBinRepository{}
	full, err := NewInventoryBin("Banana Milk", "BAN001", 100, mustAddr(t, "A-02-01"),
		time.Now(), "", "BANANA", "BASIC", 100)
	require.NoError(t, err)
	repo.bins = append(repo.bins, full)

	_, err = NewAllocator(repo).Allocate(context.Background(), testLot(50))
	require.NoError(t, err)

	assert.Equal(t, []string{"A-02-01|BAN001", "A-02-02|BAN001"}, repo.locked)
}

func TestAllocator_Allocate_NonPositiveQuantityIsNoOp(t *testing.T) {
	repo := &fakeBinRepository{}

	for _, qty := range []int{0, -5} {
		ids, err := NewAllocator(repo).Allocate(context.Background(), testLot(qty))

		require.NoError(t, err)
		assert.Empty(t, ids)
		assert.Empty(t, repo.bins, "no store writes for qty=%d", qty)
	}
}

func TestAllocator_Allocate_Defaults(t *testing.T) {
	repo := &fakeBinRepository{}
	lot := testLot(150)
	lot.StartLocation = ""
	lot.CapacityLimit = 0 // clamped to 1

	ids, err := NewAllocator(repo).Allocate(context.Background(), lot)

	require.NoError(t, err)
	assert.Len(t, ids, 150, "limit clamped to 1 yields one bin per unit")
	assert.Equal(t, 1, repo.at(DefaultStartLocation, "BAN001").Quantity)
}

func TestAllocator_Allocate_NoteAnnotation(t *testing.T) {
	repo := &fakeBinRepository{}

	_, err := NewAllocator(repo).Allocate(context.Background(), testLot(250))
	require.NoError(t, err)

	require.Len(t, repo.bins, 3)
	assert.Equal(t, "fresh", repo.bins[0].Note)
	assert.Equal(t, "fresh / 자동분할 2", repo.bins[1].Note)
	assert.Equal(t, "fresh / 자동분할 3", repo.bins[2].Note)
}

func TestAllocator_Allocate_InvalidStartLocation(t *testing.T) {
	repo := &fakeBinRepository{}
	lot := testLot(10)
	lot.StartLocation = "AA-1-1"

	_, err := NewAllocator(repo).Allocate(context.Background(), lot)

	assert.ErrorIs(t, err, ErrInvalidLocation)
}

func TestAllocator_Allocate_AddressSpaceExhaustion(t *testing.T) {
	repo := &fakeBinRepository{}
	lot := testLot(250)
	lot.StartLocation = "Z-99-98"

	_, err := NewAllocator(repo).Allocate(context.Background(), lot)

	assert.ErrorIs(t, err, ErrAddressSpaceExhausted)
	// The two addresses before the end still received stock.
	assert.Equal(t, 100, repo.at("Z-99-98", "BAN001").Quantity)
	assert.Equal(t, 100, repo.at("Z-99-99", "BAN001").Quantity)
}

func TestAllocator_Allocate_ExactFillDoesNotExhaust(t *testing.T) {
	repo := &fakeBinRepository{}
	lot := testLot(100)
	lot.StartLocation = "Z-99-99"

	ids, err := NewAllocator(repo).Allocate(context.Background(), lot)

	require.NoError(t, err, "exactly filling the last address must not fail")
	assert.Len(t, ids, 1)
}
