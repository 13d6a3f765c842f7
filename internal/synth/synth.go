// Package synth generates reproducible customer tables for demos, tests
// and benchmarks.
package synth

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"customer-segmentation/internal/customer"
)

type Options struct {
	Rows          int
	Seed          int64
	ReferenceDate time.Time
	// Duplicates re-emits that many earlier customers with new figures.
	Duplicates int
	// Missing blanks TotalSpend on that many extra customers.
	Missing int
}

type band struct {
	recency [2]int
	orders  [2]int
	aov     [2]float64
}

var bands = []band{
	{recency: [2]int{0, 30}, orders: [2]int{15, 30}, aov: [2]float64{80, 150}},
	{recency: [2]int{30, 120}, orders: [2]int{5, 15}, aov: [2]float64{40, 80}},
	{recency: [2]int{120, 400}, orders: [2]int{1, 5}, aov: [2]float64{10, 40}},
}

// Generate builds a raw (unparsed-looking but fully populated) customer
// table. The same options always yield the same table.
func Generate(opts Options) *customer.Table {
	rng := rand.New(rand.NewSource(opts.Seed))
	table := &customer.Table{Header: append([]string(nil), customer.RequiredColumns...)}

	for i := 0; i < opts.Rows; i++ {
		table.Records = append(table.Records, newRecord(rng, customerID(rng), bands[i%len(bands)], opts.ReferenceDate))
	}
	for i := 0; i < opts.Duplicates && table.Len() > 0; i++ {
		src := table.Records[rng.Intn(opts.Rows)]
		table.Records = append(table.Records, newRecord(rng, src.CustomerID, bands[rng.Intn(len(bands))], opts.ReferenceDate))
	}
	for i := 0; i < opts.Missing; i++ {
		rec := newRecord(rng, customerID(rng), bands[rng.Intn(len(bands))], opts.ReferenceDate)
		rec.TotalSpend = nil
		rec.Raw[customer.ColTotalSpend] = ""
		table.Records = append(table.Records, rec)
	}
	return table
}

func customerID(rng *rand.Rand) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		// rand.Rand reads never fail.
		panic(err)
	}
	return id.String()
}

func newRecord(rng *rand.Rand, id string, b band, ref time.Time) customer.Record {
	recency := b.recency[0] + rng.Intn(b.recency[1]-b.recency[0]+1)
	orders := int64(b.orders[0] + rng.Intn(b.orders[1]-b.orders[0]+1))
	aov := round2(b.aov[0] + rng.Float64()*(b.aov[1]-b.aov[0]))
	spend := round2(float64(orders) * aov)
	last := ref.AddDate(0, 0, -recency)

	return customer.Record{
		CustomerID:       id,
		TotalSpend:       &spend,
		TotalOrders:      &orders,
		AvgOrderValue:    &aov,
		LastPurchaseDate: &last,
		Raw: map[string]string{
			customer.ColCustomerID:       id,
			customer.ColTotalSpend:       strconv.FormatFloat(spend, 'f', -1, 64),
			customer.ColTotalOrders:      strconv.FormatInt(orders, 10),
			customer.ColAvgOrderValue:    strconv.FormatFloat(aov, 'f', -1, 64),
			customer.ColLastPurchaseDate: last.Format("2006-01-02"),
		},
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// WriteCSV writes the raw columns of table.
func WriteCSV(path string, table *customer.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create folder: %v", customer.ErrIO, err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create file: %v", customer.ErrIO, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(table.Header); err != nil {
		return fmt.Errorf("%w: %v", customer.ErrIO, err)
	}
	row := make([]string, len(table.Header))
	for _, r := range table.Records {
		for j, col := range table.Header {
			row[j] = r.Raw[col]
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("%w: %v", customer.ErrIO, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %v", customer.ErrIO, err)
	}
	return file.Close()
}
