package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"customer-segmentation/internal/customer"
)

// WriteCSV writes the original columns plus the derived ones, one line per
// record, with no index column.
func WriteCSV(path string, table *customer.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create folder: %v", customer.ErrIO, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create file: %v", customer.ErrIO, err)
	}
	defer file.Close()

	header := table.OutputHeader()
	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("%w: failed to write header: %v", customer.ErrIO, err)
	}

	row := make([]string, len(header))
	for i := range table.Records {
		for j, col := range header {
			row[j] = Cell(&table.Records[i], col)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: failed to write row: %v", customer.ErrIO, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: failed to flush csv: %v", customer.ErrIO, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: failed to close file: %v", customer.ErrIO, err)
	}
	return nil
}

// Cell renders one column of r as text. Derived columns come from the
// computed fields; everything else is passed through as read.
func Cell(r *customer.Record, col string) string {
	switch col {
	case customer.ColRecency:
		return strconv.FormatInt(r.Recency, 10)
	case customer.ColFrequency:
		return strconv.FormatInt(r.Frequency, 10)
	case customer.ColMonetary:
		return strconv.FormatFloat(r.Monetary, 'f', -1, 64)
	case customer.ColSegment:
		return strconv.Itoa(r.Segment)
	case customer.ColTier:
		return string(r.Tier)
	}
	return r.Raw[col]
}
