package customer

import (
	"time"
)

// Required input columns.
const (
	ColCustomerID       = "CustomerID"
	ColTotalSpend       = "TotalSpend"
	ColTotalOrders      = "TotalOrders"
	ColAvgOrderValue    = "AvgOrderValue"
	ColLastPurchaseDate = "LastPurchaseDate"
)

// Derived output columns, in the order they are appended.
const (
	ColRecency   = "Recency"
	ColFrequency = "Frequency"
	ColMonetary  = "Monetary"
	ColSegment   = "Segment"
	ColTier      = "Tier"
)

var RequiredColumns = []string{
	ColCustomerID,
	ColTotalSpend,
	ColTotalOrders,
	ColAvgOrderValue,
	ColLastPurchaseDate,
}

var DerivedColumns = []string{
	ColRecency,
	ColFrequency,
	ColMonetary,
	ColSegment,
	ColTier,
}

type Tier string

const (
	TierHigh   Tier = "High Value"
	TierMedium Tier = "Medium Value"
	TierLow    Tier = "Low Value"
)

// Tiers lists the tiers from highest to lowest mean Monetary.
var Tiers = []Tier{TierHigh, TierMedium, TierLow}

// Record is one customer row. Pointer fields are nil when the source cell
// was empty. Raw holds every original cell keyed by column name so that
// pass-through columns survive to the output untouched.
type Record struct {
	CustomerID       string
	TotalSpend       *float64
	TotalOrders      *int64
	AvgOrderValue    *float64
	LastPurchaseDate *time.Time

	Raw map[string]string

	Recency   int64
	Frequency int64
	Monetary  float64
	Segment   int
	Tier      Tier
}

// Complete reports whether every required field is present.
func (r *Record) Complete() bool {
	return r.TotalSpend != nil && r.TotalOrders != nil && r.AvgOrderValue != nil && r.LastPurchaseDate != nil
}

// Clone copies r with its own Raw map.
func (r *Record) Clone() Record {
	c := *r
	c.Raw = make(map[string]string, len(r.Raw))
	for k, v := range r.Raw {
		c.Raw[k] = v
	}
	return c
}

// Table is the in-memory customer table. Header keeps the original column
// order of the input file.
type Table struct {
	Header  []string
	Records []Record
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	out := &Table{
		Header:  append([]string(nil), t.Header...),
		Records: make([]Record, len(t.Records)),
	}
	for i := range t.Records {
		out.Records[i] = t.Records[i].Clone()
	}
	return out
}

// OutputHeader is the original header followed by the derived columns.
// Derived columns already present in the input are not repeated.
func (t *Table) OutputHeader() []string {
	seen := make(map[string]bool, len(t.Header))
	header := make([]string, 0, len(t.Header)+len(DerivedColumns))
	for _, h := range t.Header {
		seen[h] = true
		header = append(header, h)
	}
	for _, h := range DerivedColumns {
		if !seen[h] {
			header = append(header, h)
		}
	}
	return header
}
