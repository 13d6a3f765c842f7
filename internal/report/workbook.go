package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"customer-segmentation/internal/customer"
	"customer-segmentation/internal/tier"
)

const (
	SegmentsSheet = "Segments"
	TiersSheet    = "Tiers"
)

var tierHeader = []interface{}{"Tier", "Segment", "Customers", "MeanMonetary", "MeanRecency", "MeanFrequency"}

// WriteWorkbook saves the segmented table and the tier profile as an
// XLSX workbook.
func WriteWorkbook(path string, table *customer.Table, summaries []tier.Summary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create folder: %v", customer.ErrIO, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SegmentsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := table.OutputHeader()
	if err := setRow(f, SegmentsSheet, 1, toCells(header)); err != nil {
		return err
	}
	for i := range table.Records {
		r := &table.Records[i]
		cells := make([]interface{}, len(header))
		for j, col := range header {
			switch col {
			case customer.ColRecency:
				cells[j] = r.Recency
			case customer.ColFrequency:
				cells[j] = r.Frequency
			case customer.ColMonetary:
				cells[j] = r.Monetary
			case customer.ColSegment:
				cells[j] = r.Segment
			default:
				cells[j] = Cell(r, col)
			}
		}
		if err := setRow(f, SegmentsSheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := addSheet(f, TiersSheet); err != nil {
		return err
	}
	if err := setRow(f, TiersSheet, 1, tierHeader); err != nil {
		return err
	}
	for i, s := range summaries {
		cells := []interface{}{string(s.Tier), s.Segment, s.Customers, s.MeanMonetary, s.MeanRecency, s.MeanFrequency}
		if err := setRow(f, TiersSheet, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: failed to save workbook: %v", customer.ErrIO, err)
	}
	return nil
}

func addSheet(f *excelize.File, name string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", name, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
