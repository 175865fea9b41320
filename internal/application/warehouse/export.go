package warehouse

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// exportPageSize is how many bins each page fetch pulls while the export
// streams rows into the workbook.
const exportPageSize = 1000

// ExportBins renders the bins matching the query as an xlsx workbook. The
// full result set is paged through, so the workbook holds every matching
// bin, not just the first page.
func (s *WarehouseService) ExportBins(ctx context.Context, query ListQuery) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []interface{}{
		"id", "product_name", "product_code", "quantity", "location",
		"in_date", "out_date", "note", "category", "product_type", "status", "limit",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write export header: %w", err)
	}

	rowIdx := 2
	for page := 1; ; page++ {
		query.Page = page
		query.PageSize = exportPageSize
		items, _, err := s.List(ctx, query)
		if err != nil {
			return nil, err
		}

		for _, item := range items {
			outDate := ""
			if item.OutDate != nil {
				outDate = *item.OutDate
			}
			row := []interface{}{
				item.ID.String(), item.ProductName, item.ProductCode, item.Quantity,
				item.Location, item.InDate, outDate, item.Note, item.Category,
				item.ProductType, item.Status, item.Limit,
			}
			cell, err := excelize.CoordinatesToCellName(1, rowIdx)
			if err != nil {
				return nil, fmt.Errorf("failed to compute export cell: %w", err)
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
			rowIdx++
		}

		if len(items) < exportPageSize {
			break
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("failed to serialize export workbook: %w", err)
	}
	return buf.Bytes(), nil
}
