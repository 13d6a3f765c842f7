// Package features derives the Recency, Frequency and Monetary columns.
package features

import (
	"time"

	"customer-segmentation/internal/customer"
)

const day = 24 * time.Hour

// Names of the feature columns, in matrix order.
var Names = []string{customer.ColRecency, customer.ColFrequency, customer.ColMonetary}

// Build returns a copy of a cleaned table with RFM columns filled in.
// Recency is counted in whole days up to reference and may be negative.
func Build(table *customer.Table, reference time.Time) *customer.Table {
	out := table.Clone()
	for i := range out.Records {
		r := &out.Records[i]
		r.Recency = Recency(*r.LastPurchaseDate, reference)
		r.Frequency = *r.TotalOrders
		r.Monetary = *r.TotalSpend
	}
	return out
}

// Recency is the floored number of days from last to reference.
func Recency(last, reference time.Time) int64 {
	d := reference.Sub(last)
	days := int64(d / day)
	if d%day < 0 {
		days--
	}
	return days
}

// Matrix lays the RFM features out as one row per record.
func Matrix(table *customer.Table) [][]float64 {
	m := make([][]float64, table.Len())
	for i, r := range table.Records {
		m[i] = []float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
	}
	return m
}
