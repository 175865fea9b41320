package warehouse

import "time"

// DeliveryResult is the post-delivery state of a bin.
type DeliveryResult struct {
	Quantity int
	Status   BinStatus
	OutDate  *time.Time
}

// Deliver applies a stock-removal event to the bin under the
// quantity-decrementing policy: the amount is subtracted from the current
// quantity, clamped so the quantity never goes negative, and the bin turns
// DONE exactly when it reaches zero. OutDate is stamped with now only on the
// transition to DONE and left untouched otherwise. Negative or zero amounts
// have no effect on quantity. A bin that is already DONE is returned as-is;
// its recorded depletion date stands.
func (b *InventoryBin) Deliver(amount int, now time.Time) DeliveryResult {
	if b.Status == StatusDone {
		return DeliveryResult{
			Quantity: b.Quantity,
			Status:   b.Status,
			OutDate:  b.OutDate,
		}
	}
	if amount < 0 {
		amount = 0
	}
	newQty := b.Quantity - amount
	if newQty < 0 {
		newQty = 0
	}

	b.Quantity = newQty
	if newQty == 0 {
		b.Status = StatusDone
		out := now
		b.OutDate = &out
	} else {
		b.Status = StatusReady
	}
	b.UpdatedAt = now

	return DeliveryResult{
		Quantity: b.Quantity,
		Status:   b.Status,
		OutDate:  b.OutDate,
	}
}
