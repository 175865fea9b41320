package warehouse

import (
	"fmt"
	"time"

	"github.com/plant/backend/internal/domain/shared"
)

// BinStatus is the lifecycle state of a storage bin.
type BinStatus string

const (
	// StatusReady marks a bin that still holds undelivered stock.
	StatusReady BinStatus = "READY"
	// StatusDone marks a bin whose contents have been fully delivered.
	// A DONE bin is terminal; the same location may later receive a new READY bin.
	StatusDone BinStatus = "DONE"
)

// IsValid reports whether s is a known bin status.
func (s BinStatus) IsValid() bool {
	return s == StatusReady || s == StatusDone
}

// InventoryBin is a single physical storage bin holding one product.
// A (location, productCode) pair has at most one READY bin eligible for
// merging at any time; the allocator relies on that invariant.
type InventoryBin struct {
	shared.BaseEntity
	ProductName string     `gorm:"not null"`
	ProductCode string     `gorm:"not null;index:idx_inventory_bins_loc_code,priority:2"`
	Quantity    int        `gorm:"not null;default:0"`
	Location    string     `gorm:"not null;index:idx_inventory_bins_loc_code,priority:1"`
	InDate      time.Time  `gorm:"type:date;not null"`
	OutDate     *time.Time `gorm:"type:date"`
	Note        string
	Category    string    `gorm:"index"`
	ProductType string    `gorm:"index"`
	Status      BinStatus `gorm:"type:varchar(10);not null;default:'READY';index"`
	Limit       int       `gorm:"column:bin_limit;not null;default:100"`
}

// TableName returns the table name for GORM
func (InventoryBin) TableName() string {
	return "inventory_bins"
}

// NewInventoryBin creates a READY bin at the given location.
func NewInventoryBin(productName, productCode string, quantity int, location BinAddress, inDate time.Time, note, category, productType string, limit int) (*InventoryBin, error) {
	if productCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code cannot be empty")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if limit < 1 {
		return nil, shared.NewDomainError("INVALID_LIMIT", "Capacity limit must be at least 1")
	}
	return &InventoryBin{
		BaseEntity:  shared.NewBaseEntity(),
		ProductName: productName,
		ProductCode: productCode,
		Quantity:    quantity,
		Location:    location.String(),
		InDate:      inDate,
		Note:        note,
		Category:    category,
		ProductType: productType,
		Status:      StatusReady,
		Limit:       limit,
	}, nil
}

// Address parses the bin's stored location.
func (b *InventoryBin) Address() (BinAddress, error) {
	return ParseBinAddress(b.Location)
}

// Remaining returns how many units still fit under the bin's own limit.
func (b *InventoryBin) Remaining() int {
	if b.Limit <= b.Quantity {
		return 0
	}
	return b.Limit - b.Quantity
}

// AnnotateSplitNote returns the note for the nth bin of an auto-split lot.
// The first bin keeps the caller's note untouched; subsequent bins get the
// "자동분할 N" (auto-split lot N) suffix the front end expects.
func AnnotateSplitNote(base string, lotIndex int) string {
	if lotIndex <= 1 {
		return base
	}
	if base == "" {
		return fmt.Sprintf("자동분할 %d", lotIndex)
	}
	return fmt.Sprintf("%s / 자동분할 %d", base, lotIndex)
}
