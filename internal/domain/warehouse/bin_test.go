package warehouse

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddr(t *testing.T, s string) BinAddress {
	t.Helper()
	addr, err := ParseBinAddress(s)
	require.NoError(t, err)
	return addr
}

func TestNewInventoryBin(t *testing.T) {
	inDate := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates a READY bin", func(t *testing.T) {
		bin, err := NewInventoryBin("Banana Milk", "BAN001", 30, mustAddr(t, "A-02-03"), inDate, "fresh", "BANANA", "BASIC", 100)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, bin.ID)
		assert.Equal(t, "BAN001", bin.ProductCode)
		assert.Equal(t, 30, bin.Quantity)
		assert.Equal(t, "A-02-03", bin.Location)
		assert.Equal(t, StatusReady, bin.Status)
		assert.Equal(t, 100, bin.Limit)
		assert.Nil(t, bin.OutDate)
	})

	t.Run("fails with empty product code", func(t *testing.T) {
		bin, err := NewInventoryBin("x", "", 1, mustAddr(t, "A-01-01"), inDate, "", "", "", 100)

		require.Error(t, err)
		assert.Nil(t, bin)
	})

	t.Run("fails with negative quantity", func(t *testing.T) {
		_, err := NewInventoryBin("x", "X1", -1, mustAddr(t, "A-01-01"), inDate, "", "", "", 100)
		require.Error(t, err)
	})

	t.Run("fails with limit below 1", func(t *testing.T) {
		_, err := NewInventoryBin("x", "X1", 1, mustAddr(t, "A-01-01"), inDate, "", "", "", 0)
		require.Error(t, err)
	})
}

func TestInventoryBin_Remaining(t *testing.T) {
	bin := &InventoryBin{Quantity: 15, Limit: 20}
	assert.Equal(t, 5, bin.Remaining())

	bin.Quantity = 20
	assert.Equal(t, 0, bin.Remaining())

	// An over-committed bin still reports no room.
	bin.Quantity = 25
	assert.Equal(t, 0, bin.Remaining())
}

func TestAnnotateSplitNote(t *testing.T) {
	assert.Equal(t, "fresh", AnnotateSplitNote("fresh", 1))
	assert.Equal(t, "fresh / 자동분할 2", AnnotateSplitNote("fresh", 2))
	assert.Equal(t, "자동분할 3", AnnotateSplitNote("", 3))
	assert.Equal(t, "", AnnotateSplitNote("", 1))
}

func TestBinStatus_IsValid(t *testing.T) {
	assert.True(t, StatusReady.IsValid())
	assert.True(t, StatusDone.IsValid())
	assert.False(t, BinStatus("SHIPPED").IsValid())
}
