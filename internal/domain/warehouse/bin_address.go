package warehouse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/plant/backend/internal/domain/shared"
)

// Warehouse-specific domain errors
var (
	ErrInvalidLocation       = shared.NewDomainError("INVALID_LOCATION", "Location must match the S-RR-CC pattern, e.g. A-01-02")
	ErrAddressSpaceExhausted = shared.NewDomainError("ADDRESS_SPACE_EXHAUSTED", "No storage addresses remain past section Z")
)

const (
	maxRow = 99
	maxCol = 99
)

var locationPattern = regexp.MustCompile(`^[A-Za-z]-\d{2}-\d{2}$`)

// BinAddress identifies a physical storage slot by section letter, row and column.
// Addresses are ordered lexicographically on (Section, Row, Col).
type BinAddress struct {
	Section byte
	Row     int
	Col     int
}

// ParseBinAddress parses an "A-01-02" style address. Lowercase section
// letters are accepted and normalized to uppercase.
func ParseBinAddress(s string) (BinAddress, error) {
	if !locationPattern.MatchString(s) {
		return BinAddress{}, ErrInvalidLocation
	}
	parts := strings.Split(s, "-")
	row, _ := strconv.Atoi(parts[1])
	col, _ := strconv.Atoi(parts[2])
	if row < 1 || col < 1 {
		return BinAddress{}, ErrInvalidLocation
	}
	return BinAddress{
		Section: strings.ToUpper(parts[0])[0],
		Row:     row,
		Col:     col,
	}, nil
}

// String formats the address with zero-padded row and column. It is the
// inverse of ParseBinAddress for every valid address.
func (a BinAddress) String() string {
	return fmt.Sprintf("%c-%02d-%02d", a.Section, a.Row, a.Col)
}

// Next returns the following address: the column advances first, then the
// row, then the section letter. The address space ends at Z-99-99; advancing
// past it returns ErrAddressSpaceExhausted instead of emitting an address
// outside the A-Z range.
func (a BinAddress) Next() (BinAddress, error) {
	n := a
	n.Col++
	if n.Col > maxCol {
		n.Col = 1
		n.Row++
	}
	if n.Row > maxRow {
		n.Row = 1
		n.Section++
	}
	if n.Section > 'Z' {
		return BinAddress{}, ErrAddressSpaceExhausted
	}
	return n, nil
}
