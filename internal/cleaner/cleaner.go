package cleaner

import (
	"customer-segmentation/internal/customer"
)

type Stats struct {
	InputRows  int
	Duplicates int
	Incomplete int
	OutputRows int
}

// Clean drops repeated CustomerIDs (first occurrence wins) and then rows
// missing a required field. The input table is left untouched.
func Clean(table *customer.Table) (*customer.Table, Stats) {
	stats := Stats{InputRows: table.Len()}
	out := &customer.Table{Header: append([]string(nil), table.Header...)}

	seen := make(map[string]struct{}, table.Len())
	for i := range table.Records {
		rec := &table.Records[i]
		if _, ok := seen[rec.CustomerID]; ok {
			stats.Duplicates++
			continue
		}
		seen[rec.CustomerID] = struct{}{}

		if !rec.Complete() {
			stats.Incomplete++
			continue
		}
		out.Records = append(out.Records, rec.Clone())
	}

	stats.OutputRows = out.Len()
	return out, stats
}
